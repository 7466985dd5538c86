package repository

import (
	"context"

	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
)

// AuditRepository journal de auditoría (solo inserción).
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
}
