package billing

import (
	"context"
	"io"

	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
)

// InvoicePDFGenerator genera el PDF completo de una factura en memoria.
// Con invoice nil debe devolver domain.ErrValidation sin tocar la librería PDF.
type InvoicePDFGenerator interface {
	BuildInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error)
}

// ObjectStore almacenamiento de los PDF de facturas bajo invoices/{id}.pdf.
//
// Contrato:
//   - Upload sobrescribe el objeto existente y devuelve la URL canónica (sin firmar).
//   - Download devuelve domain.ErrNotFound si el objeto no existe.
//   - Exists solo devuelve false para "no existe"; cualquier otro fallo es error.
//   - Sign emite una URL temporal con la misma disposición de adjunto que Upload.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, invoiceID, invoiceNumber string) (string, error)
	Download(ctx context.Context, invoiceID string) (io.ReadCloser, error)
	Exists(ctx context.Context, invoiceID string) (bool, error)
	Sign(ctx context.Context, invoiceID, invoiceNumber string) (string, error)
	// Mode "s3" o "mock", solo informativo (health, logs).
	Mode() string
}
