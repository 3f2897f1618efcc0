package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hub3-slips/internal/domain"
)

type PaymentTemplateRepository struct {
	db *sql.DB
}

func NewPaymentTemplateRepository(db *sql.DB) *PaymentTemplateRepository {
	return &PaymentTemplateRepository{db: db}
}

const paymentTemplateSelect = `
	SELECT
		id,
		name,
		organization_id,
		amount,
		payment_model,
		reference_template,
		description_template,
		created_at,
		updated_at
	FROM payment_templates
`

func scanPaymentTemplate(row rowScanner) (domain.PaymentTemplate, error) {
	var (
		t                       domain.PaymentTemplate
		model, reference, descr sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.OrganizationID,
		&t.Amount,
		&model,
		&reference,
		&descr,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	t.PaymentModel = model.String
	t.ReferenceTemplate = reference.String
	t.DescriptionTemplate = descr.String
	return t, err
}

func (r *PaymentTemplateRepository) Get(ctx context.Context, id int64) (*domain.PaymentTemplate, error) {
	t, err := scanPaymentTemplate(r.db.QueryRowContext(ctx, paymentTemplateSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment template %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &t, nil
}

func (r *PaymentTemplateRepository) List(ctx context.Context) ([]domain.PaymentTemplate, error) {
	rows, err := r.db.QueryContext(ctx, paymentTemplateSelect+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentTemplate
	for rows.Next() {
		t, err := scanPaymentTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
