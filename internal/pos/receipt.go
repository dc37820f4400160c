package pos

import (
	"bytes"
	"encoding/json"
	"html/template"
	"time"

	"foodtruck/pos/domain"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money":  func(cur string, v float64) string { return formatMoney(cur, v) },
	"addons": decodeAddons,
	"when":   func(t time.Time) string { return t.Format("02/01/2006 15:04") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Order #{{.Order.DailyNumber}}</title>
<style>
body { font-family: monospace; width: 72mm; margin: 0; font-size: 12px; }
h1 { font-size: 16px; text-align: center; margin: 4px 0; }
.number { font-size: 28px; text-align: center; font-weight: bold; }
table { width: 100%; border-collapse: collapse; }
td.r { text-align: right; }
.sub { padding-left: 8px; font-size: 11px; }
hr { border: 0; border-top: 1px dashed #000; }
@media print { @page { margin: 0; } }
</style>
</head>
<body onload="window.print()">
<h1>{{.Store.Name}}</h1>
<div class="number">#{{.Order.DailyNumber}}</div>
<div>{{when .Order.CreatedAt}} - {{.Order.Type}} ({{.Order.Source}})</div>
{{if .Order.CustomerName}}<div>Customer: {{.Order.CustomerName}}</div>{{end}}
{{if .Order.CustomerPhone}}<div>Phone: {{.Order.CustomerPhone}}</div>{{end}}
{{if .Order.Address}}<div>Address: {{.Order.Address}}</div>{{end}}
<hr>
<table>
{{range .Items}}<tr><td>{{.Quantity}}x {{.ProductName}}</td><td class="r">{{money $.Store.Currency .LineTotal}}</td></tr>
{{range addons .Addons}}<tr><td class="sub">+ {{.Name}}</td><td></td></tr>
{{end}}{{if .Notes}}<tr><td class="sub">obs: {{.Notes}}</td><td></td></tr>
{{end}}{{end}}</table>
<hr>
<table>
<tr><td>Subtotal</td><td class="r">{{money .Store.Currency .Order.Subtotal}}</td></tr>
{{if gt .Order.DiscountAmount 0.0}}<tr><td>Discount</td><td class="r">-{{money .Store.Currency .Order.DiscountAmount}}</td></tr>
{{end}}{{if gt .Order.DeliveryFee 0.0}}<tr><td>Delivery</td><td class="r">{{money .Store.Currency .Order.DeliveryFee}}</td></tr>
{{end}}<tr><td><b>Total</b></td><td class="r"><b>{{money .Store.Currency .Order.Total}}</b></td></tr>
<tr><td>Payment</td><td class="r">{{.Order.PaymentMethod}}</td></tr>
{{if gt .Order.ChangeFor 0.0}}<tr><td>Change for</td><td class="r">{{money .Store.Currency .Order.ChangeFor}}</td></tr>
{{end}}</table>
{{if .Order.Notes}}<hr><div>{{.Order.Notes}}</div>{{end}}
</body>
</html>
`))

type receiptData struct {
	Store Store
	Order domain.Order
	Items []domain.OrderItem
}

// RenderReceipt renders the printable HTML receipt of an order.
func RenderReceipt(store Store, order domain.Order, items []domain.OrderItem) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, receiptData{Store: store, Order: order, Items: items}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EncodeAddons serialises the addon snapshot stored on an order item.
func EncodeAddons(addons []Addon) string {
	if len(addons) == 0 {
		return "[]"
	}
	snap := make([]domain.ItemAddon, len(addons))
	for i, a := range addons {
		snap[i] = domain.ItemAddon{ID: a.ID, Name: a.Name, Price: Float(a.Price)}
	}
	b, _ := json.Marshal(snap)
	return string(b)
}

func decodeAddons(raw string) []domain.ItemAddon {
	var out []domain.ItemAddon
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
