package cart

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bnema/cart-session-cli/internal/application"
	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func renderCart(view application.CartView, s styles) string {
	cart := view.Cart
	lines := []string{
		s.title.Render("Cart " + string(cart.ID)),
		s.header.Render(fmt.Sprintf("items: %s", formatQuantity(cart.TotalQuantity()))),
	}

	if len(cart.Lines) == 0 {
		lines = append(lines, s.empty.Render("Cart is empty."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	items := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, renderLine(line, view.Images, s))
	}
	lines = append(lines,
		s.section.Render(lipgloss.JoinVertical(lipgloss.Left, items...)),
		s.section.Render(s.total.Render("total: "+cart.GrandTotal.String())),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderLine(line domain.CartLine, images map[string]domain.MediaEntry, s styles) string {
	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.detail.Render(fmt.Sprintf("#%d", line.ID)),
		" ",
		s.sku.Render(line.SKU),
		" ",
		s.line.Render(lineName(line)),
		" ",
		s.detail.Render("x"+formatQuantity(line.Quantity)),
		" ",
		s.price.Render(line.Price.String()),
	)

	image, ok := images[line.SKU]
	if !ok || image.File == "" {
		return row
	}
	return lipgloss.JoinVertical(lipgloss.Left, row, s.detail.Render("  image: "+image.File))
}

func lineName(line domain.CartLine) string {
	if name := strings.TrimSpace(line.Name); name != "" {
		return name
	}
	return "-"
}

func renderEvents(events []domain.Event, s styles) string {
	lines := []string{s.title.Render("Events")}
	if len(events) == 0 {
		lines = append(lines, s.empty.Render("No events dispatched."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, event := range events {
		lines = append(lines, renderEvent(event, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEvent(event domain.Event, s styles) string {
	parts := []string{}
	if !event.At.IsZero() {
		parts = append(parts, s.time.Render(event.At.Format("15:04:05.000")))
	}
	parts = append(parts, s.event.Render(event.Name()))

	switch {
	case event.Failed():
		parts = append(parts, s.warning.Render(fmt.Sprintf("[%s] %s", domain.Classify(event.Err), event.Err)))
	case event.CartID != "":
		parts = append(parts, s.detail.Render("cart "+string(event.CartID)))
	case event.Drawer != "":
		parts = append(parts, s.detail.Render("drawer "+event.Drawer))
	}

	return strings.Join(parts, " ")
}

func renderImages(images map[string]domain.MediaEntry, s styles) string {
	lines := []string{
		s.title.Render("Cached images"),
		s.header.Render(fmt.Sprintf("skus: %d", len(images))),
	}
	if len(images) == 0 {
		lines = append(lines, s.empty.Render("No images cached."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	skus := make([]string, 0, len(images))
	for sku := range images {
		skus = append(skus, sku)
	}
	slices.Sort(skus)

	for _, sku := range skus {
		image := images[sku]
		row := s.sku.Render(sku) + " " + s.line.Render(image.File)
		if image.Label != "" {
			row += " " + s.detail.Render("("+image.Label+")")
		}
		lines = append(lines, row)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatQuantity(quantity float64) string {
	return strconv.FormatFloat(quantity, 'f', -1, 64)
}
