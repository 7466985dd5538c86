// Package storage guarda los PDF de facturas en un bucket S3 (o compatible) y emite
// URLs firmadas de descarga. Sin credenciales funciona en modo simulado.
package storage

import (
	"time"

	appbilling "github.com/jhoicas/correction-backoffice/internal/application/billing"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/pkg/config"
	"github.com/jhoicas/correction-backoffice/pkg/logger"
)

const (
	ModeS3   = "s3"
	ModeMock = "mock"

	contentTypePDF = "application/pdf"
)

// NewObjectStore elige el backend según la configuración: S3 si hay credenciales completas,
// simulado si no. El resto del sistema no distingue entre ambos.
func NewObjectStore(cfg config.StorageConfig, log *logger.Logger) appbilling.ObjectStore {
	if !cfg.Configured() {
		log.Warn().
			Bool("bucket_set", cfg.Bucket != "").
			Bool("region_set", cfg.Region != "").
			Msg("almacenamiento sin credenciales completas: modo simulado")
		return NewMockStore(cfg.SignedURLTTL)
	}
	return NewS3Store(cfg, log)
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return config.DefaultSignedURLTTL
	}
	return ttl
}

// attachmentDisposition fuerza la descarga con el nombre legible de la factura.
func attachmentDisposition(number string) string {
	return `attachment; filename="` + entity.InvoiceFileName(number) + `"`
}
