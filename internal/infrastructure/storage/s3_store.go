package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"

	appbilling "github.com/jhoicas/correction-backoffice/internal/application/billing"
	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/pkg/config"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

var _ appbilling.ObjectStore = (*S3Store)(nil)

// s3API subconjunto de *s3.Client que usa el store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type clientLoader func(ctx context.Context, cfg config.StorageConfig) (s3API, presigner, error)

// S3Store implementa billing.ObjectStore sobre S3. El cliente se crea en el primer uso.
type S3Store struct {
	cfg config.StorageConfig
	ttl time.Duration
	log *logger.Logger

	load    clientLoader
	once    sync.Once
	api     s3API
	presign presigner
	initErr error
}

// NewS3Store construye el store; no abre conexiones hasta la primera operación.
func NewS3Store(cfg config.StorageConfig, log *logger.Logger) *S3Store {
	return newS3Store(cfg, log, loadAWSClient)
}

func newS3Store(cfg config.StorageConfig, log *logger.Logger, load clientLoader) *S3Store {
	return &S3Store{
		cfg:  cfg,
		ttl:  ttlOrDefault(cfg.SignedURLTTL),
		log:  log.Component("storage"),
		load: load,
	}
}

func loadAWSClient(ctx context.Context, cfg config.StorageConfig) (s3API, presigner, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion(cfg.Region),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return client, s3.NewPresignClient(client), nil
}

func (s *S3Store) client(ctx context.Context) (s3API, presigner, error) {
	s.once.Do(func() {
		s.api, s.presign, s.initErr = s.load(ctx, s.cfg)
		if s.initErr != nil {
			s.log.Error().Err(s.initErr).Msg("no se pudo inicializar el cliente S3")
			return
		}
		s.log.Info().
			Str("bucket", s.cfg.Bucket).
			Str("region", s.cfg.Region).
			Str("endpoint", s.cfg.Endpoint).
			Dur("signed_url_ttl", s.ttl).
			Msg("cliente S3 inicializado")
	})
	if s.initErr != nil {
		return nil, nil, errors.Mark(errors.Wrap(s.initErr, "storage client init failed"), domain.ErrStorage)
	}
	return s.api, s.presign, nil
}

// Mode identifica el backend en logs y en /health.
func (s *S3Store) Mode() string { return ModeS3 }

// Upload escribe (o sobrescribe) el PDF bajo invoices/{id}.pdf y devuelve la URL canónica.
func (s *S3Store) Upload(ctx context.Context, data []byte, invoiceID, invoiceNumber string) (string, error) {
	key := entity.InvoiceStorageKey(invoiceID)
	api, _, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	_, err = api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.cfg.Bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentLength:      aws.Int64(int64(len(data))),
		ContentType:        aws.String(contentTypePDF),
		ContentDisposition: aws.String(attachmentDisposition(invoiceNumber)),
		ACL:                types.ObjectCannedACLPrivate,
		Metadata: map[string]string{
			"invoice-id":     invoiceID,
			"invoice-number": invoiceNumber,
			"generated-at":   time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "upload failed for %s", key), domain.ErrStorage)
	}

	s.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("objeto subido")
	return s.objectURL(key), nil
}

// Download abre el objeto; el llamador cierra el stream.
// Un objeto inexistente se marca además con domain.ErrNotFound.
func (s *S3Store) Download(ctx context.Context, invoiceID string) (io.ReadCloser, error) {
	key := entity.InvoiceStorageKey(invoiceID)
	api, _, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		wrapped := errors.Mark(errors.Wrapf(err, "download failed for %s", key), domain.ErrStorage)
		if isNotFound(err) {
			wrapped = errors.Mark(wrapped, domain.ErrNotFound)
		}
		return nil, wrapped
	}
	if out.Body == nil {
		return nil, errors.Mark(
			errors.Mark(errors.Newf("download failed for %s: empty body", key), domain.ErrStorage),
			domain.ErrNotFound,
		)
	}
	return out.Body, nil
}

// Exists consulta los metadatos del objeto. "No encontrado" es false sin error;
// cualquier otro fallo (permisos, red) es un error.
func (s *S3Store) Exists(ctx context.Context, invoiceID string) (bool, error) {
	key := entity.InvoiceStorageKey(invoiceID)
	api, _, err := s.client(ctx)
	if err != nil {
		return false, err
	}

	_, err = api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Mark(errors.Wrapf(err, "exists check failed for %s", key), domain.ErrStorage)
	}
	return true, nil
}

// Sign emite una URL GET firmada, válida durante el TTL configurado, con la misma
// disposición de descarga que el objeto.
func (s *S3Store) Sign(ctx context.Context, invoiceID, invoiceNumber string) (string, error) {
	key := entity.InvoiceStorageKey(invoiceID)
	_, ps, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := ps.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.cfg.Bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(attachmentDisposition(invoiceNumber)),
		ResponseContentType:        aws.String(contentTypePDF),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "sign failed for %s", key), domain.ErrStorage)
	}
	return req.URL, nil
}

// objectURL URL canónica (no firmada) del objeto. Con endpoint propio se usa path-style.
func (s *S3Store) objectURL(key string) string {
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
