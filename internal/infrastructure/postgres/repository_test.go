package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
)

// fakeQuerier registra la última sentencia y devuelve respuestas fijas.
type fakeQuerier struct {
	execTag  string
	execErr  error
	rowErr   error
	lastSQL  string
	lastArgs []any
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag(f.execTag), nil
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return errRow{err: f.rowErr}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestInvoiceRepo_FindNoExisteDevuelveNil(t *testing.T) {
	q := &fakeQuerier{rowErr: pgx.ErrNoRows}
	inv, err := NewInvoiceRepository(q).FindWithOrderAndUser(context.Background(), "inv-x")

	require.NoError(t, err)
	assert.Nil(t, inv)
	assert.Equal(t, []any{"inv-x"}, q.lastArgs)
	assert.Contains(t, q.lastSQL, "JOIN commandes")
}

func TestInvoiceRepo_FindErrorDeBase(t *testing.T) {
	q := &fakeQuerier{rowErr: errors.New("conn closed")}
	_, err := NewInvoiceRepository(q).FindWithOrderAndUser(context.Background(), "inv-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn closed")
}

func TestInvoiceRepo_UpdatePdfURL(t *testing.T) {
	q := &fakeQuerier{execTag: "UPDATE 1"}
	err := NewInvoiceRepository(q).UpdatePdfURL(context.Background(), "inv-1", "https://signed")
	require.NoError(t, err)
	assert.Equal(t, []any{"inv-1", "https://signed"}, q.lastArgs)

	q = &fakeQuerier{execTag: "UPDATE 0"}
	err = NewInvoiceRepository(q).UpdatePdfURL(context.Background(), "inv-x", "https://signed")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_GetByEmailNoExiste(t *testing.T) {
	q := &fakeQuerier{rowErr: pgx.ErrNoRows}
	u, err := NewUserRepository(q).GetByEmail(context.Background(), "nadie@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuditRepo_Create(t *testing.T) {
	q := &fakeQuerier{execTag: "INSERT 0 1"}
	entry := &entity.AuditLog{
		ID: "a-1", Action: entity.AuditActionInvoicePDFGenerated,
		Entity: entity.AuditEntityInvoice, EntityID: "inv-1", CreatedAt: time.Now(),
	}
	require.NoError(t, NewAuditRepository(q).Create(context.Background(), entry))

	// user_id y details vacíos viajan como NULL
	assert.Nil(t, q.lastArgs[1])
	assert.Nil(t, q.lastArgs[5])
}

func TestAuditRepo_UsuarioDesconocido(t *testing.T) {
	q := &fakeQuerier{execErr: &pgconn.PgError{Code: "23503"}}
	err := NewAuditRepository(q).Create(context.Background(), &entity.AuditLog{ID: "a-1", UserID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
