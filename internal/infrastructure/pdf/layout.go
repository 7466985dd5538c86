package pdf

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/pkg/config"
)

const (
	dateLayout      = "02/01/2006"
	timestampLayout = "02/01/2006 à 15:04:05"
)

// Company bloque fijo de identidad de la empresa emisora.
type Company struct {
	Name    string
	Address []string
	Email   string
	Phone   string
	SIRET   string
}

// Options textos y recursos estáticos del documento.
type Options struct {
	Company        Company
	LogoPath       string // vacío = sin logo
	TaxLabel       string
	CurrencySymbol string
	PaymentTerms   string
	LegalNotice    string
}

// OptionsFromConfig adapta la configuración de la aplicación.
func OptionsFromConfig(c config.InvoiceConfig) Options {
	return Options{
		Company: Company{
			Name:    c.CompanyName,
			Address: c.CompanyAddress,
			Email:   c.CompanyEmail,
			Phone:   c.CompanyPhone,
			SIRET:   c.CompanySIRET,
		},
		LogoPath:       c.LogoPath,
		TaxLabel:       c.TaxLabel,
		CurrencySymbol: c.CurrencySymbol,
		PaymentTerms:   c.PaymentTerms,
		LegalNotice:    c.LegalNotice,
	}
}

// invoiceLayout todo el texto del documento ya formateado, en orden de aparición.
// Separar el modelo del dibujo permite verificar el contenido sin parsear el PDF.
type invoiceLayout struct {
	Number    string
	IssueDate string
	DueDate   string // vacío = sin línea de vencimiento

	CompanyLines []string

	ClientName    string
	ClientEmail   string
	ClientAddress []string

	ProjectTitle     string
	DescriptionLines []string

	Item lineItem

	NetTotal   string
	TaxLine    string
	TaxTotal   string
	GrossTotal string

	PaymentTerms string
	LegalNotice  string
	GeneratedAt  string
}

type lineItem struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

// buildLayout arma el modelo. wrap corta la descripción al ancho disponible.
func buildLayout(inv *entity.Invoice, opts Options, now time.Time, wrap func(string) []string) invoiceLayout {
	net := inv.NetAmount()
	client := inv.Order.Client

	l := invoiceLayout{
		Number:        inv.Number,
		IssueDate:     inv.IssueDate().Format(dateLayout),
		CompanyLines:  companyLines(opts.Company),
		ClientName:    client.FullName(),
		ClientEmail:   client.Email,
		ClientAddress: client.AddressLines(),
		ProjectTitle:  inv.Order.Title,
		Item: lineItem{
			Description: "Correction du manuscrit « " + inv.Order.Title + " »",
			Quantity:    "1",
			UnitPrice:   formatMoney(net, opts.CurrencySymbol),
			Total:       formatMoney(net, opts.CurrencySymbol),
		},
		NetTotal:     formatMoney(net, opts.CurrencySymbol),
		TaxLine:      opts.TaxLabel + " (" + taxRate(net, inv.TaxAmount) + "%)",
		TaxTotal:     formatMoney(inv.TaxAmount, opts.CurrencySymbol),
		GrossTotal:   formatMoney(inv.Amount, opts.CurrencySymbol),
		PaymentTerms: opts.PaymentTerms,
		LegalNotice:  opts.LegalNotice,
		GeneratedAt:  "Document généré le " + now.Format(timestampLayout),
	}
	if inv.DueAt != nil && !inv.DueAt.IsZero() {
		l.DueDate = inv.DueAt.Format(dateLayout)
	}
	if inv.Order.Description != "" {
		l.DescriptionLines = wrap(inv.Order.Description)
	}
	return l
}

func companyLines(c Company) []string {
	lines := append([]string{}, c.Address...)
	lines = append(lines, c.Email, c.Phone)
	if c.SIRET != "" {
		lines = append(lines, "SIRET : "+c.SIRET)
	}
	return lo.Compact(lines)
}

// formatMoney céntimos → "120.00 €".
func formatMoney(cents int64, symbol string) string {
	return decimal.New(cents, -2).StringFixed(2) + " " + symbol
}

// taxRate porcentaje mostrado, derivado de los importes reales (tax / HT).
// Con HT = 0 se muestra 0.
func taxRate(net, tax int64) string {
	if net <= 0 {
		return "0"
	}
	return decimal.NewFromInt(tax).
		Div(decimal.NewFromInt(net)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		String()
}
