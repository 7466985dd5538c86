// Package billingtest dobles en memoria de los puertos de facturación para tests.
package billingtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jhoicas/correction-backoffice/internal/application/billing"
	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository = (*InvoiceRepo)(nil)
	_ repository.AuditRepository   = (*AuditRepo)(nil)
	_ billing.ObjectStore          = (*Store)(nil)
	_ billing.InvoicePDFGenerator  = (*Generator)(nil)
)

// ── InvoiceRepo ───────────────────────────────────────────────────────────────

type InvoiceRepo struct {
	mu        sync.Mutex
	invoices  map[string]entity.Invoice
	FindErr   error
	UpdateErr error
	Finds     int
	Updates   []string // URLs persistidas, en orden
}

func NewInvoiceRepo(invoices ...*entity.Invoice) *InvoiceRepo {
	r := &InvoiceRepo{invoices: map[string]entity.Invoice{}}
	for _, inv := range invoices {
		r.invoices[inv.ID] = *inv
	}
	return r
}

func (r *InvoiceRepo) FindWithOrderAndUser(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finds++
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepo) UpdatePdfURL(_ context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.PdfURL = url
	r.invoices[id] = inv
	r.Updates = append(r.Updates, url)
	return nil
}

// PdfURL valor persistido actualmente.
func (r *InvoiceRepo) PdfURL(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[id].PdfURL
}

func (r *InvoiceRepo) UpdateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Updates)
}

// ── AuditRepo ─────────────────────────────────────────────────────────────────

type AuditRepo struct {
	mu      sync.Mutex
	Err     error
	entries []entity.AuditLog
}

func (a *AuditRepo) Create(_ context.Context, entry *entity.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *AuditRepo) Entries() []entity.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]entity.AuditLog(nil), a.entries...)
}

// ── Store ─────────────────────────────────────────────────────────────────────

// Store almacenamiento en memoria con contadores de llamadas y errores inyectables.
type Store struct {
	mu      sync.Mutex
	objects map[string][]byte

	ExistsErr    error
	UploadErr    error
	DownloadErr  error
	SignErr      error
	SignErrTimes int // cuántas llamadas a Sign fallan con SignErr; 0 = todas

	Calls map[string]int
}

func NewStore() *Store {
	return &Store{objects: map[string][]byte{}, Calls: map[string]int{}}
}

// Put deja un objeto ya almacenado.
func (s *Store) Put(invoiceID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[invoiceID] = data
}

func (s *Store) Object(invoiceID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[invoiceID]
	return b, ok
}

func (s *Store) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[op]
}

// TotalCalls suma de todas las operaciones.
func (s *Store) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		n += c
	}
	return n
}

func (s *Store) Mode() string { return "fake" }

func (s *Store) Upload(ctx context.Context, data []byte, invoiceID, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["upload"]++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	s.objects[invoiceID] = append([]byte(nil), data...)
	return "https://bucket.test/" + entity.InvoiceStorageKey(invoiceID), nil
}

func (s *Store) Download(_ context.Context, invoiceID string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["download"]++
	if s.DownloadErr != nil {
		return nil, s.DownloadErr
	}
	b, ok := s.objects[invoiceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *Store) Exists(_ context.Context, invoiceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["exists"]++
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	_, ok := s.objects[invoiceID]
	return ok, nil
}

func (s *Store) Sign(ctx context.Context, invoiceID, invoiceNumber string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["sign"]++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.SignErr != nil && (s.SignErrTimes == 0 || s.Calls["sign"] <= s.SignErrTimes) {
		return "", s.SignErr
	}
	return SignedURL(invoiceID, invoiceNumber, s.Calls["sign"]), nil
}

// SignedURL URL que devuelve Sign en su n-ésima llamada.
func SignedURL(invoiceID, invoiceNumber string, n int) string {
	return fmt.Sprintf("https://bucket.test/%s?X-Amz-Signature=sig%d&file=%s",
		entity.InvoiceStorageKey(invoiceID), n, entity.InvoiceFileName(invoiceNumber))
}

// ── Generator ─────────────────────────────────────────────────────────────────

type Generator struct {
	mu    sync.Mutex
	Err   error
	calls int
}

func (g *Generator) BuildInvoicePDF(_ context.Context, invoice *entity.Invoice) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice data is required", domain.ErrValidation)
	}
	if g.Err != nil {
		return nil, g.Err
	}
	return RenderedPDF(invoice.Number), nil
}

func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// RenderedPDF bytes que produce el generador falso para un número de factura.
func RenderedPDF(number string) []byte {
	return []byte("%PDF-1.7\n% factura " + number + "\n%%EOF\n")
}
