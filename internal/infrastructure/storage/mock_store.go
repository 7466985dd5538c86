package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	appbilling "github.com/jhoicas/correction-backoffice/internal/application/billing"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
)

var _ appbilling.ObjectStore = (*MockStore)(nil)

// MockHost host fijo de las URLs simuladas.
const MockHost = "mock-s3.local"

// placeholderPDF contenido devuelto por Download en modo simulado.
var placeholderPDF = []byte("%PDF-1.4\n% mock storage placeholder\n%%EOF\n")

// MockStore almacenamiento simulado: todas las operaciones tienen éxito con valores
// deterministas y reconocibles. Exists siempre es true.
type MockStore struct {
	ttl time.Duration
}

// NewMockStore construye el store simulado; ttl solo se refleja en X-Amz-Expires.
func NewMockStore(ttl time.Duration) *MockStore {
	return &MockStore{ttl: ttlOrDefault(ttl)}
}

func (m *MockStore) Mode() string { return ModeMock }

func (m *MockStore) Upload(_ context.Context, _ []byte, invoiceID, _ string) (string, error) {
	return m.objectURL(invoiceID), nil
}

func (m *MockStore) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(placeholderPDF)), nil
}

func (m *MockStore) Exists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (m *MockStore) Sign(_ context.Context, invoiceID, _ string) (string, error) {
	return fmt.Sprintf("%s?X-Amz-Algorithm=AWS4-HMAC-SHA256&X-Amz-Expires=%d&X-Amz-Signature=mock",
		m.objectURL(invoiceID), int64(m.ttl.Seconds())), nil
}

func (m *MockStore) objectURL(invoiceID string) string {
	return "https://" + MockHost + "/" + entity.InvoiceStorageKey(invoiceID)
}
