package repository

import (
	"context"

	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas.
type InvoiceRepository interface {
	// FindWithOrderAndUser carga la factura con su comanda y cliente. (nil, nil) si no existe.
	FindWithOrderAndUser(ctx context.Context, id string) (*entity.Invoice, error)
	// UpdatePdfURL sobrescribe pdf_url; domain.ErrNotFound si la factura no existe.
	UpdatePdfURL(ctx context.Context, id, url string) error
}
