package pos

import (
	"fmt"
	"net/url"
	"strings"

	"foodtruck/pos/domain"
)

// WhatsAppLink builds a wa.me deep link to phone with a pre-filled text.
func WhatsAppLink(phone, countryCode, text string) string {
	link := "https://wa.me/" + InternationalPhone(phone, countryCode)
	if text == "" {
		return link
	}
	return link + "?text=" + url.QueryEscape(text)
}

// OrderMessage is the order summary a customer sends to the store.
func OrderMessage(store Store, order domain.Order, items []domain.OrderItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* - order #%d\n", store.Name, order.DailyNumber)
	fmt.Fprintf(&b, "Name: %s\n", order.CustomerName)
	if order.CustomerPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", order.CustomerPhone)
	}
	b.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%dx %s - %s\n", it.Quantity, it.ProductName, formatMoney(store.Currency, it.LineTotal))
		for _, a := range decodeAddons(it.Addons) {
			fmt.Fprintf(&b, "   + %s\n", a.Name)
		}
		if it.Notes != "" {
			fmt.Fprintf(&b, "   obs: %s\n", it.Notes)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", formatMoney(store.Currency, order.Subtotal))
	if order.DiscountAmount > 0 {
		fmt.Fprintf(&b, "Discount: -%s\n", formatMoney(store.Currency, order.DiscountAmount))
	}
	if order.Type == domain.OrderDelivery {
		fmt.Fprintf(&b, "Delivery: %s\n", formatMoney(store.Currency, order.DeliveryFee))
		fmt.Fprintf(&b, "Address: %s\n", order.Address)
	}
	fmt.Fprintf(&b, "*Total: %s*\n", formatMoney(store.Currency, order.Total))
	fmt.Fprintf(&b, "Payment: %s", order.PaymentMethod)
	if order.PaymentMethod == domain.PaymentCash && order.ChangeFor > 0 {
		fmt.Fprintf(&b, " (change for %s)", formatMoney(store.Currency, order.ChangeFor))
	}
	return b.String()
}

func formatMoney(currency string, v float64) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%s %.2f", currency, v)
}
