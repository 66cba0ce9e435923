package graphql

const createCartMutation = `mutation createCart {
  cartId: createEmptyCart
}`

const addSimpleProductsMutation = `mutation addSimpleProductToCart($cartId: String!, $sku: String!, $quantity: Float!) {
  addSimpleProductsToCart(
    input: { cart_id: $cartId, cart_items: [{ data: { quantity: $quantity, sku: $sku } }] }
  ) {
    cart {
      id
    }
  }
}`

const addConfigurableProductsMutation = `mutation addConfigurableProductToCart($cartId: String!, $sku: String!, $parentSku: String!, $quantity: Float!) {
  addConfigurableProductsToCart(
    input: {
      cart_id: $cartId
      cart_items: [{ data: { quantity: $quantity, sku: $sku }, parent_sku: $parentSku }]
    }
  ) {
    cart {
      id
    }
  }
}`

const updateCartItemsMutation = `mutation updateItemInCart($cartId: String!, $itemId: Int!, $quantity: Float!) {
  updateCartItems(
    input: { cart_id: $cartId, cart_items: [{ cart_item_id: $itemId, quantity: $quantity }] }
  ) {
    cart {
      id
    }
  }
}`

const removeItemMutation = `mutation removeItem($cartId: String!, $itemId: Int!) {
  removeItemFromCart(input: { cart_id: $cartId, cart_item_id: $itemId }) {
    cart {
      id
    }
  }
}`

const cartDetailsQuery = `query getCartDetails($cartId: String!) {
  cart(cart_id: $cartId) {
    id
    items {
      id
      quantity
      product {
        sku
        name
      }
      prices {
        row_total {
          value
          currency
        }
      }
    }
    prices {
      grand_total {
        value
        currency
      }
    }
  }
}`
