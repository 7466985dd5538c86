package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const selectInvoiceWithOrderAndUser = `
	SELECT f.id, f.number, f.amount, f.tax_amount, f.issued_at, f.due_at,
	       COALESCE(f.pdf_url, ''), f.created_at, f.updated_at,
	       c.id, c.titre, COALESCE(c.description, ''),
	       u.id, u.email, COALESCE(u.prenom, ''), COALESCE(u.nom, ''),
	       COALESCE(u.adresse, ''), u.role, u.status
	FROM factures f
	JOIN commandes c ON c.id = f.commande_id
	JOIN users u     ON u.id = c.user_id
	WHERE f.id = $1`

// FindWithOrderAndUser carga la factura con su comanda y el cliente. (nil, nil) si no existe.
func (r *InvoiceRepo) FindWithOrderAndUser(ctx context.Context, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	client := &inv.Order.Client
	err := r.q.QueryRow(ctx, selectInvoiceWithOrderAndUser, id).Scan(
		&inv.ID, &inv.Number, &inv.Amount, &inv.TaxAmount, &inv.IssuedAt, &inv.DueAt,
		&inv.PdfURL, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.Order.ID, &inv.Order.Title, &inv.Order.Description,
		&client.ID, &client.Email, &client.FirstName, &client.LastName,
		&client.Address, &client.Role, &client.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice with order and user: %w", err)
	}
	return &inv, nil
}

// UpdatePdfURL sobrescribe pdf_url sin condiciones: el último que escribe gana.
func (r *InvoiceRepo) UpdatePdfURL(ctx context.Context, id, url string) error {
	query := `UPDATE factures SET pdf_url = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("update invoice pdf_url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
