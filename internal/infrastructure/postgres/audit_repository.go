package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo journal de auditoría en la tabla audit_logs.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada. user_id vacío se guarda como NULL (acción de sistema).
func (r *AuditRepo) Create(ctx context.Context, entry *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, nullIfEmpty(entry.UserID), entry.Action, entry.Entity, entry.EntityID,
		nullIfEmpty(entry.Details), entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown audit user %q", domain.ErrInvalidInput, entry.UserID)
		}
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
