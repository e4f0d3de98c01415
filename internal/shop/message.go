package shop

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.French)

// FormatXAF renders a whole amount with French digit grouping.
func FormatXAF(amount int64) string {
	return printer.Sprintf("%d F CFA", amount)
}

// OrderMessage is the confirmation text sent to the shop once the backend
// has confirmed orderID.
func OrderMessage(orderID string, cart Cart, customer CustomerInfo) string {
	lines := make([]string, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, fmt.Sprintf("%s (x%d)", l.Name, l.Quantity))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour, je souhaite commander : %s. ", strings.Join(lines, ", "))
	fmt.Fprintf(&b, "Total: %s. ", FormatXAF(cart.Total().Round(0).IntPart()))
	fmt.Fprintf(&b, "Informations de livraison: Nom: %s Téléphone: %s ", customer.Name, customer.Phone)
	if customer.Address != "" {
		fmt.Fprintf(&b, "Adresse: %s ", customer.Address)
	}
	fmt.Fprintf(&b, "Numéro de commande: #%s", orderID)
	return b.String()
}

// WhatsAppLink builds a click-to-chat link to number prefilled with text.
func WhatsAppLink(number, text string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + strings.TrimPrefix(number, "+"),
		RawQuery: url.Values{"text": {text}}.Encode(),
	}
	return u.String()
}
