// Package pdf genera el PDF de una factura de corrección de manuscrito.
//
// Layout de la página A4 (flujo vertical, una fila Maroto por línea de texto):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  [logo]                          FACTURE  N° / fechas       │
//	│  EMISOR: nombre, dirección, contacto, SIRET                 │
//	│                                   FACTURÉ À: cliente (der.) │
//	│  PROYECTO: título + descripción cortada al ancho            │
//	│  TABLA: Désignation | Qté | P.U. HT | Total HT (1 línea)    │
//	│                                 Total HT / TVA / Total TTC  │
//	│  FOOTER: condiciones de pago, mención legal, timestamp      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/jhoicas/correction-backoffice/internal/application/billing"
	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta y medidas ──────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 33, Green: 53, Blue: 85}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const (
	fontFamily      = "helvetica"
	bodySize        = 9.0
	pageMargin      = 15.0
	descriptionWrap = 175.0 // mm útiles de la columna de proyecto (A4 210 - márgenes - padding)
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	opts     Options
	log      *logger.Logger
	measurer TextMeasurer
	now      func() time.Time
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator(opts Options, log *logger.Logger) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{
		opts:     opts,
		log:      log.Component("pdf"),
		measurer: newFPDFMeasurer(fontFamily),
		now:      time.Now,
	}
}

// BuildInvoicePDF genera el documento completo y devuelve sus bytes.
func (g *MarotoPDFGenerator) BuildInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice data is required", domain.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layout := buildLayout(invoice, g.opts, g.now(), func(s string) []string {
		return wrapText(s, descriptionWrap, func(l string) float64 {
			return g.measurer.Width(l, bodySize, false)
		})
	})

	cfg := mconfig.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(pageMargin).WithRightMargin(pageMargin).
		WithTopMargin(pageMargin).WithBottomMargin(pageMargin).
		WithDefaultFont(&props.Font{Family: fontFamily, Size: bodySize}).
		WithTitle("Facture "+layout.Number, true).
		WithAuthor(g.opts.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRows(layout)...)
	m.AddRows(line.NewRow(4, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.companyRows(layout)...)
	m.AddRows(clientRows(layout)...)
	m.AddRows(row.New(4))
	m.AddRows(projectRows(layout)...)
	m.AddRows(row.New(4))
	m.AddRows(tableRows(layout.Item)...)
	m.AddRows(row.New(3))
	m.AddRows(totalsRows(layout)...)
	m.AddRows(row.New(8))
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(layout)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "pdf: generar documento"), domain.ErrRender)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRows: logo (si existe en disco) a la izquierda; título, número y fechas a la derecha.
func (g *MarotoPDFGenerator) headerRows(l invoiceLayout) []core.Row {
	left := col.New(6)
	if g.logoAvailable() {
		left = col.New(6).Add(image.NewFromFile(g.opts.LogoPath, props.Rect{Percent: 90}))
	}

	right := []core.Component{
		text.New("FACTURE", props.Text{
			Style: fontstyle.Bold, Size: 20, Align: align.Right, Color: colorPrimary,
		}),
		text.New("N° "+l.Number, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 10,
		}),
		text.New("Date d'émission : "+l.IssueDate, props.Text{
			Size: 8, Align: align.Right, Top: 16, Color: colorGray,
		}),
	}
	if l.DueDate != "" {
		right = append(right, text.New("Date d'échéance : "+l.DueDate, props.Text{
			Size: 8, Align: align.Right, Top: 20, Color: colorGray,
		}))
	}

	return []core.Row{row.New(26).Add(left, col.New(6).Add(right...))}
}

func (g *MarotoPDFGenerator) logoAvailable() bool {
	if g.opts.LogoPath == "" {
		return false
	}
	if _, err := os.Stat(g.opts.LogoPath); err != nil {
		g.log.Warn().Err(err).Str("path", g.opts.LogoPath).Msg("logo no disponible, se genera sin él")
		return false
	}
	return true
}

// companyRows: identidad fija del emisor.
func (g *MarotoPDFGenerator) companyRows(l invoiceLayout) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New(g.opts.Company.Name, props.Text{
			Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 1,
		}))),
	}
	for _, s := range l.CompanyLines {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(s, props.Text{Size: 8, Color: colorGray}),
		)))
	}
	return rows
}

// clientRows: bloque "Facturé à" alineado a la derecha. Sin dirección no hay líneas de dirección.
func clientRows(l invoiceLayout) []core.Row {
	right := func(s string, p props.Text) core.Row {
		p.Align = align.Right
		return row.New(p.Size/2+1).Add(col.New(6), col.New(6).Add(text.New(s, p)))
	}

	rows := []core.Row{
		right("FACTURÉ À", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary}),
		right(l.ClientName, props.Text{Style: fontstyle.Bold, Size: 10}),
		right(l.ClientEmail, props.Text{Size: 8, Color: colorGray}),
	}
	for _, a := range l.ClientAddress {
		rows = append(rows, right(a, props.Text{Size: 8, Color: colorGray}))
	}
	return rows
}

// projectRows: título de la comanda y, si existe, la descripción ya cortada.
func projectRows(l invoiceLayout) []core.Row {
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("PROJET", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary,
		}))),
		row.New(6).Add(col.New(12).Add(text.New(l.ProjectTitle, props.Text{
			Style: fontstyle.Bold, Size: 10,
		}))),
	}
	for _, d := range l.DescriptionLines {
		rows = append(rows, row.New(4.5).Add(col.New(12).Add(
			text.New(d, props.Text{Size: bodySize, Color: colorGray}),
		)))
	}
	return rows
}

// tableRows: cabecera con borde y fondo + una única línea con borde.
func tableRows(item lineItem) []core.Row {
	headerStyle := &props.Cell{
		BackgroundColor: colorPrimary,
		BorderType:      border.Full,
		BorderColor:     colorPrimary,
		BorderThickness: 0.3,
	}
	cellStyle := &props.Cell{
		BorderType:      border.Full,
		BorderColor:     colorGray,
		BorderThickness: 0.2,
	}

	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 2, Right: 2,
		})).WithStyle(headerStyle)
	}
	d := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{
			Size: 8, Align: a, Top: 2, Left: 2, Right: 2,
		})).WithStyle(cellStyle)
	}

	return []core.Row{
		row.New(8).Add(
			h("Désignation", 6, align.Left),
			h("Qté", 1, align.Center),
			h("P.U. HT", 2, align.Right),
			h("Total HT", 3, align.Right),
		),
		row.New(9).Add(
			d(item.Description, 6, align.Left),
			d(item.Quantity, 1, align.Center),
			d(item.UnitPrice, 2, align.Right),
			d(item.Total, 3, align.Right),
		),
	}
}

// totalsRows: HT, impuesto y TTC destacado, alineados a la derecha.
func totalsRows(l invoiceLayout) []core.Row {
	pair := func(label, value string, grand bool) core.Row {
		p := props.Text{Size: bodySize, Align: align.Right, Right: 2}
		h := 6.0
		if grand {
			p.Style = fontstyle.Bold
			p.Size = 12
			p.Color = colorPrimary
			h = 8
		}
		lp := p
		lp.Style = fontstyle.Bold
		return row.New(h).Add(
			col.New(6),
			col.New(3).Add(text.New(label, lp)),
			col.New(3).Add(text.New(value, p)),
		)
	}

	return []core.Row{
		pair("Total HT :", l.NetTotal, false),
		pair(l.TaxLine+" :", l.TaxTotal, false),
		pair("Total TTC :", l.GrossTotal, true),
	}
}

// footerRows: condiciones de pago, mención legal y sello de generación.
func footerRows(l invoiceLayout) []core.Row {
	rows := make([]core.Row, 0, 3)
	if l.PaymentTerms != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(l.PaymentTerms, props.Text{Size: 8, Top: 1}),
		)))
	}
	if l.LegalNotice != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New(l.LegalNotice, props.Text{Size: 6.5, Color: colorGray, Top: 1}),
		)))
	}
	rows = append(rows, row.New(5).Add(col.New(12).Add(
		text.New(l.GeneratedAt, props.Text{Size: 6.5, Color: colorGray, Align: align.Right, Top: 1}),
	)))
	return rows
}
