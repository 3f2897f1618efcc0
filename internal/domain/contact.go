package domain

import (
	"strings"
	"time"
)

type Contact struct {
	ID int64

	FirstName string
	LastName  string

	Street      string
	HouseNumber string
	PostalCode  string
	City        string

	PIN   string
	Email *string
	Phone *string

	IsMember bool

	// Dependent is the first underaged member linked to the contact, if any.
	Dependent *Underaged

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

type Underaged struct {
	ID        int64
	ContactID int64

	FirstName string
	LastName  string
	PIN       string

	DateOfBirth *time.Time
}

// FullName is "first last" without stray spaces.
func (c Contact) FullName() string {
	return fullName(c.FirstName, c.LastName)
}

func (u Underaged) FullName() string {
	return fullName(u.FirstName, u.LastName)
}

func fullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
