package hub3

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

const (
	DefaultBankCode = "HRVHUB30"
	DefaultCurrency = "EUR"

	// LineCount is the number of lines in every HUB-3 payload.
	LineCount = 14

	amountWidth = 15
)

// Payload line positions.
const (
	LineBankCode = iota
	LineCurrency
	LineAmount
	LinePayerName
	LinePayerAddress
	LinePayerCity
	LineRecipientName
	LineRecipientAddress
	LineRecipientCity
	LineRecipientIBAN
	LinePaymentModel
	LineReference
	LinePurpose
	LineDescription
)

// Party is a payer or recipient as printed on the slip.
type Party struct {
	Name        string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

// Address is street and house number, without a dangling separator.
func (p Party) Address() string {
	return joinNonEmpty(p.Street, p.HouseNumber)
}

// Place is postal code and city, without a dangling separator.
func (p Party) Place() string {
	return joinNonEmpty(p.PostalCode, p.City)
}

// Request holds everything needed to build one slip payload.
type Request struct {
	// BankCode and Currency default to DefaultBankCode and DefaultCurrency.
	BankCode string
	Currency string

	Amount decimal.Decimal

	Payer         Party
	Recipient     Party
	RecipientIBAN string
	PaymentModel  string

	ReferenceTemplate   string
	DescriptionTemplate string

	// Contact and Dependent feed the template placeholders.
	Contact   Record
	Dependent *Record
}

// Payload is the resolved HUB-3 text block, one entry per line.
type Payload struct {
	Lines [LineCount]string
}

// String joins the lines with '\n'; the last line is not terminated.
func (p Payload) String() string {
	return strings.Join(p.Lines[:], "\n")
}

func (p Payload) Reference() string {
	return p.Lines[LineReference]
}

func (p Payload) Description() string {
	return p.Lines[LineDescription]
}

// Build assembles the payload for req. Amount, recipient and code field
// problems are returned as *FieldError; template problems are recovered and returned as
// warnings next to a usable payload.
func Build(req Request) (Payload, []Warning, error) {
	var p Payload

	if strings.TrimSpace(req.Recipient.Name) == "" {
		return p, nil, &FieldError{Field: "recipient_name", Err: ErrMissingOrganizationData, Detail: "recipient name is empty"}
	}
	if strings.TrimSpace(req.RecipientIBAN) == "" {
		return p, nil, &FieldError{Field: "recipient_iban", Err: ErrMissingOrganizationData, Detail: "recipient IBAN is empty"}
	}

	if !encodable(req.RecipientIBAN) {
		return p, nil, &FieldError{Field: "recipient_iban", Err: ErrMissingOrganizationData, Detail: "recipient IBAN contains characters outside ISO-8859-2"}
	}

	bankCode := orDefault(req.BankCode, DefaultBankCode)
	currency := orDefault(req.Currency, DefaultCurrency)
	for _, f := range []struct{ name, value string }{
		{"bank_code", bankCode},
		{"currency", currency},
		{"payment_model", req.PaymentModel},
	} {
		if !encodable(f.value) {
			return p, nil, &FieldError{Field: f.name, Err: ErrUnsupportedCharacter, Detail: fmt.Sprintf("%q", f.value)}
		}
	}

	amount, err := AmountLine(req.Amount)
	if err != nil {
		return p, nil, err
	}

	reference, warnings := ResolveReference(req.ReferenceTemplate, req.Contact, req.Dependent)
	description, descWarnings := ResolveDescription(req.DescriptionTemplate, req.Contact, req.Dependent)
	warnings = append(warnings, descWarnings...)

	p.Lines[LineBankCode] = identifier(bankCode)
	p.Lines[LineCurrency] = identifier(currency)
	p.Lines[LineAmount] = amount
	p.Lines[LinePayerName] = freeText(req.Payer.Name)
	p.Lines[LinePayerAddress] = freeText(req.Payer.Address())
	p.Lines[LinePayerCity] = freeText(req.Payer.Place())
	p.Lines[LineRecipientName] = freeText(req.Recipient.Name)
	p.Lines[LineRecipientAddress] = freeText(req.Recipient.Address())
	p.Lines[LineRecipientCity] = freeText(req.Recipient.Place())
	p.Lines[LineRecipientIBAN] = identifier(req.RecipientIBAN)
	p.Lines[LinePaymentModel] = identifier(req.PaymentModel)
	p.Lines[LineReference] = reference
	p.Lines[LinePurpose] = ""
	p.Lines[LineDescription] = freeText(description)

	return p, warnings, nil
}

// AmountLine renders amount in cents, zero-padded to 15 digits. Cents are
// truncated, not rounded.
func AmountLine(amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", &FieldError{Field: "amount", Err: ErrInvalidAmount, Detail: "must be greater than zero"}
	}
	if !amount.Equal(amount.Truncate(2)) {
		return "", &FieldError{Field: "amount", Err: ErrInvalidAmount, Detail: "at most two decimal places are allowed"}
	}

	cents := amount.Shift(2).Truncate(0).String()
	if len(cents) > amountWidth {
		return "", &FieldError{Field: "amount", Err: ErrInvalidAmount, Detail: "does not fit in 15 digits"}
	}
	return strings.Repeat("0", amountWidth-len(cents)) + cents, nil
}

// WarnFunc receives recovered template problems.
type WarnFunc func(Warning)

// LogWarning is the default WarnFunc.
func LogWarning(w Warning) {
	log.Printf("[HUB3] %v", w)
}

// Builder applies installation-wide defaults to requests and forwards
// warnings to Warn. A Builder is safe for concurrent use.
type Builder struct {
	BankCode string
	Currency string
	Warn     WarnFunc
}

func NewBuilder(bankCode, currency string, warn WarnFunc) *Builder {
	if warn == nil {
		warn = LogWarning
	}
	return &Builder{BankCode: bankCode, Currency: currency, Warn: warn}
}

func (b *Builder) Build(req Request) (Payload, error) {
	if req.BankCode == "" {
		req.BankCode = b.BankCode
	}
	if req.Currency == "" {
		req.Currency = b.Currency
	}

	p, warnings, err := Build(req)
	if err != nil {
		return p, err
	}

	warn := b.Warn
	if warn == nil {
		warn = LogWarning
	}
	for _, w := range warnings {
		warn(w)
	}
	return p, nil
}

func joinNonEmpty(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// freeText normalizes diacritics and keeps the value on one line and inside
// ISO-8859-2.
func freeText(s string) string {
	s = oneLine(Normalize(s))
	return strings.Map(func(r rune) rune {
		if encodableRune(r) {
			return r
		}
		return '?'
	}, s)
}

func encodableRune(r rune) bool {
	if r < utf8.RuneSelf {
		return true
	}
	_, ok := charmap.ISO8859_2.EncodeRune(r)
	return ok
}

// encodable reports whether every rune of s has an ISO-8859-2 byte.
func encodable(s string) bool {
	for _, r := range s {
		if !encodableRune(r) {
			return false
		}
	}
	return true
}

// identifier keeps numeric and code fields verbatim apart from line breaks.
func identifier(s string) string {
	return oneLine(s)
}

func oneLine(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '\t', '\v', '\f', '\u0085', '\u2028', '\u2029':
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
