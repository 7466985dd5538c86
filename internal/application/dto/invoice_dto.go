package dto

import "time"

// InvoiceResponse salida de GET /api/admin/factures/:id. Importes en céntimos.
type InvoiceResponse struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	Amount      int64      `json:"amount"`
	TaxAmount   int64      `json:"tax_amount"`
	NetAmount   int64      `json:"net_amount"`
	IssuedAt    time.Time  `json:"issued_at"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	PdfURL      string     `json:"pdf_url,omitempty"`
	OrderID     string     `json:"order_id"`
	OrderTitle  string     `json:"order_title"`
	ClientName  string     `json:"client_name"`
	ClientEmail string     `json:"client_email"`
}

// PdfURLResponse salida de POST /api/admin/factures/:id/regenerate.
type PdfURLResponse struct {
	PdfURL string `json:"pdf_url"`
}
