package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hub3-slips/internal/domain"
)

var ErrNotFound = errors.New("not found")

type ContactsFilter struct {
	IDs        []int64
	MemberOnly bool
	City       *string
}

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactSelect = `
	SELECT
		c.id,
		c.first_name,
		c.last_name,
		c.street,
		c.house_number,
		c.postal_code,
		c.city,
		c.oib,
		c.email,
		c.phone,
		c.is_member,
		c.created_at,
		c.updated_at,

		u.id,
		u.first_name,
		u.last_name,
		u.oib,
		u.date_of_birth
	FROM contacts c
	LEFT JOIN LATERAL (
		SELECT id, first_name, last_name, oib, date_of_birth
		FROM underaged
		WHERE contact_id = c.id AND deleted_at IS NULL
		ORDER BY id
		LIMIT 1
	) u ON true
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (domain.Contact, error) {
	var (
		c                 domain.Contact
		street, house     sql.NullString
		postal, city, oib sql.NullString
		depID             sql.NullInt64
		depFirst, depLast sql.NullString
		depOIB            sql.NullString
		depBorn           sql.NullTime
	)

	if err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&street,
		&house,
		&postal,
		&city,
		&oib,
		&c.Email,
		&c.Phone,
		&c.IsMember,
		&c.CreatedAt,
		&c.UpdatedAt,
		&depID,
		&depFirst,
		&depLast,
		&depOIB,
		&depBorn,
	); err != nil {
		return c, err
	}

	c.Street = street.String
	c.HouseNumber = house.String
	c.PostalCode = postal.String
	c.City = city.String
	c.PIN = oib.String

	if depID.Valid {
		dep := &domain.Underaged{
			ID:        depID.Int64,
			ContactID: c.ID,
			FirstName: depFirst.String,
			LastName:  depLast.String,
			PIN:       depOIB.String,
		}
		if depBorn.Valid {
			dep.DateOfBirth = &depBorn.Time
		}
		c.Dependent = dep
	}

	return c, nil
}

func (r *ContactRepository) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	query := contactSelect + ` WHERE c.id = $1 AND c.deleted_at IS NULL`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func contactsWhere(f ContactsFilter, first int) (string, []any) {
	where := []string{"c.deleted_at IS NULL"}
	args := []any{}
	i := first

	if len(f.IDs) > 0 {
		where = append(where, fmt.Sprintf("c.id = ANY($%d)", i))
		args = append(args, f.IDs)
		i++
	}
	if f.MemberOnly {
		where = append(where, "c.is_member = true")
	}
	if f.City != nil && *f.City != "" {
		where = append(where, fmt.Sprintf("c.city = $%d", i))
		args = append(args, *f.City)
		i++
	}

	return strings.Join(where, " AND "), args
}

func (r *ContactRepository) List(ctx context.Context, f ContactsFilter) ([]domain.Contact, error) {
	where, args := contactsWhere(f, 1)
	query := contactSelect + " WHERE " + where + " ORDER BY c.last_name, c.first_name, c.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ContactRepository) HasMoreThan(ctx context.Context, limit int64, f ContactsFilter) (bool, error) {
	where, args := contactsWhere(f, 2)
	query := `SELECT COUNT(*) > $1 FROM contacts c WHERE ` + where

	var tooMany bool
	if err := r.db.QueryRowContext(ctx, query, append([]any{limit}, args...)...).Scan(&tooMany); err != nil {
		return false, err
	}
	return tooMany, nil
}
