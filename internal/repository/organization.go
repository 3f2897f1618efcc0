package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hub3-slips/internal/domain"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Get(ctx context.Context, id int64) (*domain.Organization, error) {
	query := `
		SELECT id, name, street, house_number, postal_code, city, iban, email
		FROM organizations
		WHERE id = $1
	`

	var (
		o                     domain.Organization
		street, house, postal sql.NullString
		city, iban            sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID,
		&o.Name,
		&street,
		&house,
		&postal,
		&city,
		&iban,
		&o.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	o.Street = street.String
	o.HouseNumber = house.String
	o.PostalCode = postal.String
	o.City = city.String
	o.IBAN = iban.String

	return &o, nil
}
