package entity

import "time"

// Invoice representa una factura ("facture") con la comanda y el cliente unidos,
// tal como se necesita para generar el PDF. Montos en céntimos, TTC.
type Invoice struct {
	ID        string
	Number    string // ej. FACT-2025-001, único en el sistema
	Amount    int64  // total TTC en céntimos
	TaxAmount int64  // parte de impuestos en céntimos
	IssuedAt  *time.Time
	DueAt     *time.Time // nil = sin fecha de vencimiento
	PdfURL    string     // última URL firmada persistida; vacío hasta la primera generación
	Order     Order
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order representa la comanda ("commande") que factura la corrección de un manuscrito.
type Order struct {
	ID          string
	Title       string
	Description string // opcional
	Client      User
}

// NetAmount importe HT (sin impuestos) en céntimos.
func (i *Invoice) NetAmount() int64 {
	return i.Amount - i.TaxAmount
}

// IssueDate fecha de emisión; si no se fijó explícitamente se usa la de creación.
func (i *Invoice) IssueDate() time.Time {
	if i.IssuedAt != nil && !i.IssuedAt.IsZero() {
		return *i.IssuedAt
	}
	return i.CreatedAt
}

// FileName nombre del adjunto descargable: Facture_{number}.pdf
func (i *Invoice) FileName() string {
	return InvoiceFileName(i.Number)
}

// InvoiceFileName nombre de archivo para un número de factura.
func InvoiceFileName(number string) string {
	return "Facture_" + number + ".pdf"
}

// InvoiceStorageKey clave del objeto en el bucket: invoices/{id}.pdf
func InvoiceStorageKey(invoiceID string) string {
	return "invoices/" + invoiceID + ".pdf"
}
