package entity

import "time"

// Acciones registradas en el journal de auditoría.
const (
	AuditActionInvoicePDFGenerated = "invoice.pdf_generated"
	AuditEntityInvoice             = "facture"
)

// AuditLog entrada del journal de auditoría del back-office.
type AuditLog struct {
	ID        string
	UserID    string // admin que originó la acción; vacío en trabajos en segundo plano
	Action    string
	Entity    string
	EntityID  string
	Details   string
	CreatedAt time.Time
}
