package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

type storefrontLine struct {
	id       int
	sku      string
	quantity float64
}

// storefront is a minimal in-memory cart service speaking the GraphQL operations the CLI sends.
type storefront struct {
	mu         sync.Mutex
	carts      map[string][]storefrontLine
	nextCart   int
	nextItem   int
	operations []string
	tokens     []string
}

func newStorefront(t *testing.T) (*storefront, *httptest.Server) {
	t.Helper()

	sf := &storefront{carts: map[string][]storefrontLine{}}
	server := httptest.NewServer(http.HandlerFunc(sf.serveHTTP))
	t.Cleanup(server.Close)
	t.Setenv("CART_GRAPHQL_ENDPOINT", server.URL)

	return sf, server
}

func (s *storefront) ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.operations...)
}

func (s *storefront) count(op string) int {
	var n int
	for _, recorded := range s.ops() {
		if recorded == op {
			n++
		}
	}
	return n
}

// forgetCarts simulates carts expiring on the server side.
func (s *storefront) forgetCarts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts = map[string][]storefrontLine{}
}

func (s *storefront) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.operations = append(s.operations, req.OperationName)
	s.tokens = append(s.tokens, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	if req.OperationName == "createCart" {
		s.nextCart++
		id := "cart-" + strconv.Itoa(s.nextCart)
		s.carts[id] = nil
		writeData(w, map[string]any{"cartId": id})
		return
	}

	cartID, _ := req.Variables["cartId"].(string)
	lines, ok := s.carts[cartID]
	if !ok {
		writeErrors(w, fmt.Sprintf("Could not find a cart with ID %q", cartID))
		return
	}

	switch req.OperationName {
	case "addSimpleProductToCart", "addConfigurableProductToCart":
		s.nextItem++
		s.carts[cartID] = append(lines, storefrontLine{
			id:       s.nextItem,
			sku:      req.Variables["sku"].(string),
			quantity: req.Variables["quantity"].(float64),
		})
		writeData(w, map[string]any{})
	case "updateItemInCart":
		itemID := int(req.Variables["itemId"].(float64))
		for i := range lines {
			if lines[i].id == itemID {
				lines[i].quantity = req.Variables["quantity"].(float64)
			}
		}
		writeData(w, map[string]any{})
	case "removeItem":
		itemID := int(req.Variables["itemId"].(float64))
		kept := lines[:0]
		for _, line := range lines {
			if line.id != itemID {
				kept = append(kept, line)
			}
		}
		s.carts[cartID] = kept
		writeData(w, map[string]any{})
	case "getCartDetails":
		items := make([]map[string]any, 0, len(lines))
		var total float64
		for _, line := range lines {
			rowTotal := 10 * line.quantity
			total += rowTotal
			items = append(items, map[string]any{
				"id":       strconv.Itoa(line.id),
				"quantity": line.quantity,
				"product":  map[string]any{"sku": line.sku, "name": "Product " + line.sku},
				"prices":   map[string]any{"row_total": map[string]any{"value": rowTotal, "currency": "USD"}},
			})
		}
		writeData(w, map[string]any{"cart": map[string]any{
			"id":     cartID,
			"items":  items,
			"prices": map[string]any{"grand_total": map[string]any{"value": total, "currency": "USD"}},
		}})
	default:
		writeErrors(w, "unknown operation "+req.OperationName)
	}
}

func writeData(w http.ResponseWriter, data any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeErrors(w http.ResponseWriter, message string) {
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": []map[string]any{{"message": message}}})
}
