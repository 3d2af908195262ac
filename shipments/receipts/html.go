package receipts

import (
	"html/template"
	"io"
)

var htmlTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Receipt {{.TrackingNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; margin: 32px; }
header { border-bottom: 3px solid #1d4ed8; padding-bottom: 12px; margin-bottom: 24px; }
.tracking { font-size: 22px; font-weight: bold; letter-spacing: 2px; }
section { margin-bottom: 18px; }
section h2 { font-size: 14px; text-transform: uppercase; color: #1d4ed8; margin: 0 0 6px; }
table { width: 100%; border-collapse: collapse; }
td { padding: 4px 0; vertical-align: top; }
td.label { width: 40%; color: #6b7280; }
.total { font-size: 18px; font-weight: bold; text-align: right; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<header>
<h1>Shipping Receipt</h1>
<div class="tracking" id="tracking-number">{{.TrackingNumber}}</div>
<div>Status: <span id="status">{{.Status}}</span> &middot; Issued {{.IssuedOn}}</div>
</header>
{{range .Blocks}}<section class="block">
<h2>{{.Title}}</h2>
<table>
{{range .Lines}}<tr><td class="label">{{.Label}}</td><td class="value">{{.Value}}</td></tr>
{{end}}</table>
</section>
{{end}}<p class="total">Total: <span id="total">{{.Total}}</span></p>
</body>
</html>
`))

// RenderHTML writes the printable receipt page.
func RenderHTML(w io.Writer, r Receipt) error {
	return htmlTemplate.Execute(w, r)
}
