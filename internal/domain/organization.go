package domain

type Organization struct {
	ID int64

	Name        string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string

	IBAN  string
	Email *string
}
