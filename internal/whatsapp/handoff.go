// Package whatsapp renders the checkout handoff: a prefilled wa.me chat link
// containing the cart summary, opened by the shopper to finish the order over
// WhatsApp.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sakuraessence/storefront/internal/cart"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

// URL builds the wa.me link for the given destination number and message.
func URL(number, msg string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(msg))
}

func amount(v float64) string {
	if v == float64(int64(v)) {
		return frPrinter.Sprintf("%d", int64(v))
	}
	return frPrinter.Sprintf("%.2f", v)
}

// CartMessage renders the French order message sent with the handoff link.
// Missing contact fields render as an em-dash placeholder.
func CartMessage(storeName, currency string, items []cart.LineItem, name, phone, email string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌸 *Nouvelle commande %s*\n\n", storeName)

	var total float64
	for _, li := range items {
		sub := li.UnitPrice * float64(li.Quantity)
		total += sub
		fmt.Fprintf(&b, "- %s (%s) x%d → %s %s\n",
			li.Name, li.Variant.String(), li.Quantity, amount(sub), currency)
	}

	fmt.Fprintf(&b, "\n*Total :* %s %s\n\n", amount(total), currency)

	fmt.Fprintf(&b, "👤 *Nom :* %s\n📧 *Email :* %s\n📱 *Téléphone :* %s\n",
		orDash(name), orDash(email), orDash(phone))

	b.WriteString("\n💖")
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
