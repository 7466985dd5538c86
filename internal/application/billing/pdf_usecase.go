package billing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/internal/domain/repository"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

// PDFResult respuesta del caso de uso: o bien una redirección a una URL firmada,
// o bien los bytes del PDF para enviarlos directamente.
type PDFResult struct {
	RedirectURL string
	Content     []byte
	FileName    string
}

// IsRedirect indica si el cliente debe ser redirigido a RedirectURL.
func (r *PDFResult) IsRedirect() bool { return r.RedirectURL != "" }

// InvoicePDFUseCase orquesta generación, almacenamiento y firma de los PDF de facturas.
//
// No hay exclusión mutua por factura: dos regeneraciones simultáneas del mismo id
// terminan con "el último que escribe gana" tanto en el bucket como en pdf_url.
type InvoicePDFUseCase struct {
	invoices  repository.InvoiceRepository
	audit     repository.AuditRepository
	generator InvoicePDFGenerator
	store     ObjectStore
	bg        *Background
	log       *logger.Logger
}

// NewInvoicePDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewInvoicePDFUseCase(
	invoices repository.InvoiceRepository,
	audit repository.AuditRepository,
	generator InvoicePDFGenerator,
	store ObjectStore,
	bg *Background,
	log *logger.Logger,
) *InvoicePDFUseCase {
	return &InvoicePDFUseCase{
		invoices:  invoices,
		audit:     audit,
		generator: generator,
		store:     store,
		bg:        bg,
		log:       log.Component("invoice_pdf"),
	}
}

// GetInvoice devuelve la factura con comanda y cliente, o domain.ErrNotFound.
func (uc *InvoicePDFUseCase) GetInvoice(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	inv, err := uc.invoices.FindWithOrderAndUser(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// DeliverPDF flujo orientado a navegador (GET /:id/pdf).
//
//   - Si el objeto ya existe: URL firmada nueva, se persiste y se redirige.
//   - Si la firma falla: se regenera en lugar de fallar la petición.
//   - Si no existe: render → upload → firma → persistencia, y se devuelven los bytes.
func (uc *InvoicePDFUseCase) DeliverPDF(ctx context.Context, invoiceID, actorID string) (*PDFResult, error) {
	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	// ── 2. ¿Ya hay un PDF en el bucket? ───────────────────────────────────────
	exists, err := uc.store.Exists(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("pdf: comprobar existencia: %w", err)
	}

	if exists {
		signed, signErr := uc.store.Sign(ctx, inv.ID, inv.Number)
		if signErr == nil {
			if err := uc.invoices.UpdatePdfURL(ctx, inv.ID, signed); err != nil {
				return nil, fmt.Errorf("pdf: guardar url: %w", err)
			}
			return &PDFResult{RedirectURL: signed, FileName: inv.FileName()}, nil
		}
		// La firma falló: se regenera como recuperación.
		uc.log.Warn().Err(signErr).Str("invoice_id", inv.ID).
			Msg("firma de URL fallida, se regenera el PDF")
	}

	// ── 3. Regenerar y devolver los bytes ─────────────────────────────────────
	content, _, err := uc.regenerate(ctx, inv, actorID)
	if err != nil {
		return nil, err
	}
	return &PDFResult{Content: content, FileName: inv.FileName()}, nil
}

// DownloadPDF flujo de descarga directa (GET /:id/download).
//
// Si el objeto existe se devuelven sus bytes tal cual. Si no, se genera el PDF,
// se responde de inmediato y el upload → firma → persistencia queda en segundo plano.
func (uc *InvoicePDFUseCase) DownloadPDF(ctx context.Context, invoiceID, actorID string) (*PDFResult, error) {
	inv, err := uc.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	exists, err := uc.store.Exists(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("pdf: comprobar existencia: %w", err)
	}

	if exists {
		content, err := uc.readStored(ctx, inv.ID)
		switch {
		case err == nil:
			return &PDFResult{Content: content, FileName: inv.FileName()}, nil
		case errors.Is(err, domain.ErrNotFound):
			// Borrado entre Exists y Download: se trata como ausente.
			uc.log.Warn().Str("invoice_id", inv.ID).Msg("objeto desaparecido antes de la descarga, se regenera")
		default:
			return nil, fmt.Errorf("pdf: descargar: %w", err)
		}
	}

	content, err := uc.generator.BuildInvoicePDF(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}

	snapshot := *inv
	uc.bg.Go("invoice_pdf_persist:"+inv.ID, func(bgCtx context.Context) error {
		_, err := uc.persist(bgCtx, &snapshot, content, actorID)
		return err
	})

	return &PDFResult{Content: content, FileName: inv.FileName()}, nil
}

// Regenerate fuerza render → upload → firma → persistencia aunque el objeto exista.
// Devuelve la nueva URL firmada.
func (uc *InvoicePDFUseCase) Regenerate(ctx context.Context, invoiceID, actorID string) (string, error) {
	inv, err := uc.GetInvoice(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	_, signed, err := uc.regenerate(ctx, inv, actorID)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// regenerate ciclo síncrono completo; devuelve los bytes y la URL firmada.
func (uc *InvoicePDFUseCase) regenerate(ctx context.Context, inv *entity.Invoice, actorID string) ([]byte, string, error) {
	content, err := uc.generator.BuildInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	signed, err := uc.persist(ctx, inv, content, actorID)
	if err != nil {
		return nil, "", err
	}
	return content, signed, nil
}

// persist sube el PDF, lo firma y guarda la URL firmada en la factura.
// Solo se persiste la URL firmada: la canónica no sirve sobre un objeto privado.
func (uc *InvoicePDFUseCase) persist(ctx context.Context, inv *entity.Invoice, content []byte, actorID string) (string, error) {
	objectURL, err := uc.store.Upload(ctx, content, inv.ID, inv.Number)
	if err != nil {
		return "", fmt.Errorf("pdf: subir: %w", err)
	}
	signed, err := uc.store.Sign(ctx, inv.ID, inv.Number)
	if err != nil {
		return "", fmt.Errorf("pdf: firmar: %w", err)
	}
	if err := uc.invoices.UpdatePdfURL(ctx, inv.ID, signed); err != nil {
		return "", fmt.Errorf("pdf: guardar url: %w", err)
	}
	inv.PdfURL = signed

	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("object_url", objectURL).
		Int("bytes", len(content)).
		Msg("PDF de factura generado y almacenado")

	uc.recordAudit(ctx, inv, actorID, len(content))
	return signed, nil
}

func (uc *InvoicePDFUseCase) readStored(ctx context.Context, invoiceID string) ([]byte, error) {
	rc, err := uc.store.Download(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "download failed for %s", entity.InvoiceStorageKey(invoiceID)), domain.ErrStorage)
	}
	return buf.Bytes(), nil
}

// recordAudit nunca hace fallar la operación: un error de auditoría solo se registra.
func (uc *InvoicePDFUseCase) recordAudit(ctx context.Context, inv *entity.Invoice, actorID string, size int) {
	if uc.audit == nil {
		return
	}
	entry := &entity.AuditLog{
		ID:        uuid.New().String(),
		UserID:    actorID,
		Action:    entity.AuditActionInvoicePDFGenerated,
		Entity:    entity.AuditEntityInvoice,
		EntityID:  inv.ID,
		Details:   fmt.Sprintf("number=%s bytes=%d storage=%s", inv.Number, size, uc.store.Mode()),
		CreatedAt: time.Now(),
	}
	if err := uc.audit.Create(ctx, entry); err != nil {
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo registrar la auditoría")
	}
}
