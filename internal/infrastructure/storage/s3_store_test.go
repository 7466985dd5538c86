package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/pkg/config"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake S3 en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeObject struct {
	data        []byte
	contentType string
	disposition string
	acl         types.ObjectCannedACL
	metadata    map[string]string
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	headErr error
	putErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string]fakeObject{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{
		data:        data,
		contentType: aws.ToString(in.ContentType),
		disposition: aws.ToString(in.ContentDisposition),
		acl:         in.ACL,
		metadata:    in.Metadata,
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: aws.String(obj.contentType),
	}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) get(key string) (fakeObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[key]
	return o, ok
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Bucket:          "factures-test",
		Region:          "eu-west-3",
		AccessKeyID:     "AKIDTEST",
		SecretAccessKey: "SECRETTEST",
		SignedURLTTL:    time.Hour,
	}
}

// realPresigner firma de verdad (SigV4) sin tocar la red.
func realPresigner(cfg config.StorageConfig) presigner {
	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return s3.NewPresignClient(client)
}

func newTestStore(t *testing.T, cfg config.StorageConfig) (*S3Store, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	store := newS3Store(cfg, logger.Nop(), func(context.Context, config.StorageConfig) (s3API, presigner, error) {
		return fake, realPresigner(cfg), nil
	})
	return store, fake
}

func readAll(t *testing.T, rc io.ReadCloser) []byte {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return b
}

// ──────────────────────────────────────────────────────────────────────────────
// Upload / Download / Exists
// ──────────────────────────────────────────────────────────────────────────────

func TestS3Store_UploadYDescargaIdaYVuelta(t *testing.T) {
	store, fake := newTestStore(t, testStorageConfig())
	ctx := context.Background()
	data := []byte("%PDF-1.7 contenido")

	objectURL, err := store.Upload(ctx, data, "inv-1", "FACT-2025-001")
	require.NoError(t, err)
	assert.Equal(t, "https://factures-test.s3.eu-west-3.amazonaws.com/invoices/inv-1.pdf", objectURL)

	obj, ok := fake.get("invoices/inv-1.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.contentType)
	assert.Equal(t, `attachment; filename="Facture_FACT-2025-001.pdf"`, obj.disposition)
	assert.Equal(t, types.ObjectCannedACLPrivate, obj.acl)
	assert.Equal(t, "inv-1", obj.metadata["invoice-id"])
	assert.Equal(t, "FACT-2025-001", obj.metadata["invoice-number"])
	assert.NotEmpty(t, obj.metadata["generated-at"])

	exists, err := store.Exists(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Download(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, data, readAll(t, rc))
}

func TestS3Store_ResubidaReemplazaContenidoYMetadatos(t *testing.T) {
	store, fake := newTestStore(t, testStorageConfig())
	ctx := context.Background()

	_, err := store.Upload(ctx, []byte("v1"), "inv-1", "FACT-OLD")
	require.NoError(t, err)
	_, err = store.Upload(ctx, []byte("v2"), "inv-1", "FACT-NEW")
	require.NoError(t, err)

	obj, _ := fake.get("invoices/inv-1.pdf")
	assert.Equal(t, []byte("v2"), obj.data)
	assert.Equal(t, "FACT-NEW", obj.metadata["invoice-number"])
	assert.Contains(t, obj.disposition, "Facture_FACT-NEW.pdf")
}

func TestS3Store_ExistsNoEncontradoEsFalseSinError(t *testing.T) {
	store, _ := newTestStore(t, testStorageConfig())

	exists, err := store.Exists(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestS3Store_ExistsAccesoDenegadoEsError(t *testing.T) {
	store, fake := newTestStore(t, testStorageConfig())
	fake.headErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}

	exists, err := store.Exists(context.Background(), "inv-1")
	require.Error(t, err)
	assert.False(t, exists)
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "exists check failed")
}

func TestS3Store_DownloadInexistenteMarcaNotFound(t *testing.T) {
	store, _ := newTestStore(t, testStorageConfig())

	rc, err := store.Download(context.Background(), "no-existe")
	require.Error(t, err)
	assert.Nil(t, rc)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.Contains(t, err.Error(), "download failed")
}

func TestS3Store_UploadFallidoLlevaPrefijo(t *testing.T) {
	store, fake := newTestStore(t, testStorageConfig())
	fake.putErr = fmt.Errorf("connection reset")

	_, err := store.Upload(context.Background(), []byte("x"), "inv-1", "FACT-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.Contains(t, err.Error(), "upload failed")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestS3Store_SubidasConcurrentes(t *testing.T) {
	store, _ := newTestStore(t, testStorageConfig())
	ctx := context.Background()

	ids := []string{"inv-a", "inv-b", "inv-c"}
	var wg conc.WaitGroup
	for _, id := range ids {
		id := id
		wg.Go(func() {
			_, err := store.Upload(ctx, []byte("pdf-"+id), id, "N-"+id)
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	for _, id := range ids {
		exists, err := store.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, exists, id)

		rc, err := store.Download(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("pdf-"+id), readAll(t, rc))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Sign
// ──────────────────────────────────────────────────────────────────────────────

func TestS3Store_SignUsaTTLConfigurado(t *testing.T) {
	store, _ := newTestStore(t, testStorageConfig())

	signed, err := store.Sign(context.Background(), "inv-1", "FACT-2025-001")
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "factures-test.s3.eu-west-3.amazonaws.com", u.Host)
	assert.Equal(t, "/invoices/inv-1.pdf", u.Path)

	q := u.Query()
	assert.Equal(t, "3600", q.Get("X-Amz-Expires"))
	assert.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.Equal(t, `attachment; filename="Facture_FACT-2025-001.pdf"`, q.Get("response-content-disposition"))
}

func TestS3Store_SignTTLPorDefectoSieteDias(t *testing.T) {
	cfg := testStorageConfig()
	cfg.SignedURLTTL = 0
	store, _ := newTestStore(t, cfg)

	signed, err := store.Sign(context.Background(), "inv-1", "FACT-1")
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "604800", u.Query().Get("X-Amz-Expires"))
}

func TestS3Store_EndpointPropioPathStyle(t *testing.T) {
	cfg := testStorageConfig()
	cfg.Endpoint = "http://minio:9000/"
	cfg.UsePathStyle = true
	store, _ := newTestStore(t, cfg)
	ctx := context.Background()

	objectURL, err := store.Upload(ctx, []byte("x"), "inv-1", "FACT-1")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/factures-test/invoices/inv-1.pdf", objectURL)

	signed, err := store.Sign(ctx, "inv-1", "FACT-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "http://minio:9000/factures-test/invoices/inv-1.pdf?"), signed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inicialización perezosa
// ──────────────────────────────────────────────────────────────────────────────

func TestS3Store_ClienteSeInicializaUnaVez(t *testing.T) {
	calls := 0
	fake := newFakeS3()
	cfg := testStorageConfig()
	store := newS3Store(cfg, logger.Nop(), func(context.Context, config.StorageConfig) (s3API, presigner, error) {
		calls++
		return fake, realPresigner(cfg), nil
	})
	assert.Equal(t, 0, calls, "no debe conectar al construirse")

	ctx := context.Background()
	_, _ = store.Exists(ctx, "a")
	_, _ = store.Upload(ctx, []byte("x"), "a", "1")
	_, _ = store.Sign(ctx, "a", "1")
	assert.Equal(t, 1, calls)
}

func TestS3Store_FalloDeInicializacion(t *testing.T) {
	store := newS3Store(testStorageConfig(), logger.Nop(), func(context.Context, config.StorageConfig) (s3API, presigner, error) {
		return nil, nil, fmt.Errorf("invalid region")
	})

	_, err := store.Upload(context.Background(), []byte("x"), "inv-1", "FACT-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.Contains(t, err.Error(), "invalid region")

	_, err = store.Sign(context.Background(), "inv-1", "FACT-1")
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Factory y modo simulado
// ──────────────────────────────────────────────────────────────────────────────

func TestNewObjectStore_SeleccionDeModo(t *testing.T) {
	assert.Equal(t, ModeMock, NewObjectStore(config.StorageConfig{}, logger.Nop()).Mode())

	partial := testStorageConfig()
	partial.SecretAccessKey = ""
	assert.Equal(t, ModeMock, NewObjectStore(partial, logger.Nop()).Mode())

	assert.Equal(t, ModeS3, NewObjectStore(testStorageConfig(), logger.Nop()).Mode())
}

func TestMockStore_ValoresDeterministas(t *testing.T) {
	m := NewMockStore(0)
	ctx := context.Background()

	objectURL, err := m.Upload(ctx, []byte("ignored"), "inv-1", "FACT-1")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-s3.local/invoices/inv-1.pdf", objectURL)

	exists, err := m.Exists(ctx, "cualquiera")
	require.NoError(t, err)
	assert.True(t, exists)

	signed, err := m.Sign(ctx, "inv-1", "FACT-1")
	require.NoError(t, err)
	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, MockHost, u.Host)
	assert.Equal(t, "mock", u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "604800", u.Query().Get("X-Amz-Expires"))

	rc, err := m.Download(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(readAll(t, rc), []byte("%PDF-")))
}

func TestMockStore_TTLConfigurado(t *testing.T) {
	signed, err := NewMockStore(90*time.Minute).Sign(context.Background(), "inv-1", "FACT-1")
	require.NoError(t, err)
	assert.Contains(t, signed, "X-Amz-Expires=5400")
}
