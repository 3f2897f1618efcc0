package service

import (
	"hub3-slips/internal/domain"
	"hub3-slips/internal/hub3"
)

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// contactRecord exposes a contact to template placeholders.
func contactRecord(c domain.Contact) hub3.Record {
	payer := payerParty(c)
	return hub3.Record{
		ID: c.ID,
		Attributes: map[string]string{
			"first_name":   c.FirstName,
			"last_name":    c.LastName,
			"full_name":    c.FullName(),
			"pin":          c.PIN,
			"email":        strPtr(c.Email),
			"phone":        strPtr(c.Phone),
			"street":       c.Street,
			"house_number": c.HouseNumber,
			"address":      payer.Address(),
			"postal_code":  c.PostalCode,
			"city":         c.City,
		},
	}
}

func dependentRecord(u *domain.Underaged) *hub3.Record {
	if u == nil {
		return nil
	}

	attrs := map[string]string{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"full_name":  u.FullName(),
		"pin":        u.PIN,
	}
	if u.DateOfBirth != nil {
		attrs["date_of_birth"] = u.DateOfBirth.Format("02.01.2006.")
	}
	return &hub3.Record{ID: u.ID, Attributes: attrs}
}

func payerParty(c domain.Contact) hub3.Party {
	return hub3.Party{
		Name:        c.FullName(),
		Street:      c.Street,
		HouseNumber: c.HouseNumber,
		PostalCode:  c.PostalCode,
		City:        c.City,
	}
}

func recipientParty(o domain.Organization) hub3.Party {
	return hub3.Party{
		Name:        o.Name,
		Street:      o.Street,
		HouseNumber: o.HouseNumber,
		PostalCode:  o.PostalCode,
		City:        o.City,
	}
}

// slipRequest combines a template, its organization and one contact.
func slipRequest(t domain.PaymentTemplate, o domain.Organization, c domain.Contact) hub3.Request {
	return hub3.Request{
		Amount:              t.Amount,
		Payer:               payerParty(c),
		Recipient:           recipientParty(o),
		RecipientIBAN:       o.IBAN,
		PaymentModel:        t.PaymentModel,
		ReferenceTemplate:   t.ReferenceTemplate,
		DescriptionTemplate: t.DescriptionTemplate,
		Contact:             contactRecord(c),
		Dependent:           dependentRecord(c.Dependent),
	}
}
