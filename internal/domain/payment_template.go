package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentTemplate struct {
	ID             int64
	Name           string
	OrganizationID int64

	Amount       decimal.Decimal
	PaymentModel string

	ReferenceTemplate   string
	DescriptionTemplate string

	CreatedAt *time.Time
	UpdatedAt *time.Time
}
