package report

import (
	"bytes"
	"html/template"
	"strconv"
	"time"

	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/masterdata"
	"github.com/solventa-app/solventa/internal/sales"
)

// ContractData feeds the sale contract document.
type ContractData struct {
	Sale        sales.Sale
	Client      masterdata.Client
	Guarantor   *masterdata.Guarantor
	Product     masterdata.Product
	Salesperson masterdata.Personnel
	GeneratedAt time.Time
}

// PromissoryData feeds the promissory note. When Guarantor is set the note
// binds both signers.
type PromissoryData struct {
	Sale        sales.Sale
	Client      masterdata.Client
	Guarantor   *masterdata.Guarantor
	GeneratedAt time.Time
}

// StatementData feeds the installment statement document.
type StatementData struct {
	Sale         sales.Sale
	Client       masterdata.Client
	Installments []collections.Installment
	Payments     []collections.Payment
	Summary      collections.LatenessSummary
	GeneratedAt  time.Time
}

var docFuncs = template.FuncMap{
	"money": func(v float64) string {
		return "$" + strconv.FormatFloat(v, 'f', 2, 64)
	},
	"date": func(t time.Time) string {
		return t.Format("02/01/2006")
	},
	"dateptr": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("02/01/2006")
	},
}

const docStyle = `<style>
body { font-family: Georgia, serif; margin: 2.5cm; color: #111; }
h1 { font-size: 1.3rem; text-align: center; text-transform: uppercase; }
h2 { font-size: 1rem; margin-top: 1.5rem; }
table { width: 100%; border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #999; padding: 0.3rem 0.5rem; text-align: left; font-size: 0.85rem; }
.meta { font-size: 0.8rem; color: #555; margin-top: 2rem; }
.sign { margin-top: 4rem; display: flex; justify-content: space-between; }
.sign div { border-top: 1px solid #111; padding-top: 0.3rem; width: 40%; text-align: center; font-size: 0.85rem; }
</style>`

const contractTemplate = `<html><head><title>Contract #{{.Sale.ID}}</title>` + docStyle + `</head><body>
<h1>Installment Sale Contract N&deg; {{.Sale.ID}}</h1>
<p>Date of sale: {{date .Sale.Date}}</p>
<h2>Buyer</h2>
<p>{{.Client.FullName}} &mdash; DNI {{.Client.DNI}}<br>
{{.Client.HomeAddress}}, {{.Client.City}}, {{.Client.Province}}</p>
{{if .Guarantor}}<h2>Guarantor</h2>
<p>{{.Guarantor.FullName}} &mdash; DNI {{.Guarantor.DNI}}<br>
{{.Guarantor.HomeAddress}}, {{.Guarantor.City}}, {{.Guarantor.Province}}</p>{{end}}
<h2>Object of sale</h2>
<p>{{.Product.Name}}</p>
<h2>Financed terms</h2>
<table>
<tr><th>Principal</th><td>{{money .Sale.Principal}}</td></tr>
<tr><th>Total financed</th><td>{{money .Sale.TotalFinanced}}</td></tr>
<tr><th>Interest</th><td>{{.Sale.InterestPct}}%</td></tr>
<tr><th>TEM / TNA / TEA</th><td>{{.Sale.Rates.TEM}}% / {{.Sale.Rates.TNA}}% / {{.Sale.Rates.TEA}}%</td></tr>
<tr><th>Plan</th><td>{{.Sale.InstallmentCount}} {{.Sale.Plan}} installments of {{money .Sale.InstallmentAmount}}</td></tr>
<tr><th>First due date</th><td>{{date .Sale.FirstDueDate}}</td></tr>
{{if .Sale.CollectionAddress}}<tr><th>Collection address</th><td>{{.Sale.CollectionAddress}}</td></tr>{{end}}
</table>
<p>The buyer agrees to pay the installments listed above on their due dates.
Late installments accrue surcharges per the agreed schedule.</p>
<div class="sign">
<div>Buyer signature</div>
<div>Seller: {{.Salesperson.FullName}}</div>
</div>
<p class="meta">Generated {{.GeneratedAt.Format "02/01/2006 15:04"}}</p>
</body></html>`

const promissoryTemplate = `<html><head><title>Promissory note #{{.Sale.ID}}</title>` + docStyle + `</head><body>
<h1>Promissory Note</h1>
<p>For value received, I, {{.Client.FullName}}, DNI {{.Client.DNI}}, promise to pay
the sum of <strong>{{money .Sale.TotalFinanced}}</strong> in {{.Sale.InstallmentCount}}
{{.Sale.Plan}} installments of {{money .Sale.InstallmentAmount}}, the first falling due
on {{date .Sale.FirstDueDate}}.</p>
{{if .Guarantor}}<p>{{.Guarantor.FullName}}, DNI {{.Guarantor.DNI}}, of
{{.Guarantor.HomeAddress}}, {{.Guarantor.City}}, jointly and severally guarantees
payment of this note.</p>{{end}}
<div class="sign">
<div>{{.Client.FullName}}</div>
{{if .Guarantor}}<div>{{.Guarantor.FullName}}</div>{{end}}
</div>
<p class="meta">Sale N&deg; {{.Sale.ID}} &middot; Generated {{.GeneratedAt.Format "02/01/2006 15:04"}}</p>
</body></html>`

const statementTemplate = `<html><head><title>Statement #{{.Sale.ID}}</title>` + docStyle + `</head><body>
<h1>Installment Statement &mdash; Sale N&deg; {{.Sale.ID}}</h1>
<p>Client: {{.Client.FullName}} (DNI {{.Client.DNI}})</p>
<h2>Installments</h2>
<table>
<tr><th>#</th><th>Due</th><th>Amount</th><th>Paid</th><th>Payment date</th></tr>
{{range .Installments}}<tr>
<td>{{.Sequence}}{{if .LateFee}} (late fee){{end}}</td>
<td>{{date .DueDate}}</td>
<td>{{money .OriginalAmount}}</td>
<td>{{money .AmountPaid}}</td>
<td>{{dateptr .PaymentDate}}</td>
</tr>{{end}}
</table>
<h2>Payments received</h2>
<table>
<tr><th>Date</th><th>Amount</th><th>Type</th><th>Receipt</th></tr>
{{range .Payments}}<tr>
<td>{{date .Date}}</td><td>{{money .Amount}}</td><td>{{.Type}}</td><td>{{.Receipt}}</td>
</tr>{{end}}
</table>
<p>Total due {{money .Summary.TotalDue}} &middot; total paid {{money .Summary.TotalPaid}}</p>
<p class="meta">Generated {{.GeneratedAt.Format "02/01/2006 15:04"}}</p>
</body></html>`

var (
	contractDoc   = template.Must(template.New("contract").Funcs(docFuncs).Parse(contractTemplate))
	promissoryDoc = template.Must(template.New("promissory").Funcs(docFuncs).Parse(promissoryTemplate))
	statementDoc  = template.Must(template.New("statement").Funcs(docFuncs).Parse(statementTemplate))
)

// ContractHTML renders the contract document body.
func ContractHTML(data ContractData) (string, error) {
	return execDoc(contractDoc, data)
}

// PromissoryHTML renders the promissory note body.
func PromissoryHTML(data PromissoryData) (string, error) {
	return execDoc(promissoryDoc, data)
}

// StatementHTML renders the installment statement body.
func StatementHTML(data StatementData) (string, error) {
	return execDoc(statementDoc, data)
}

func execDoc(doc *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := doc.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
