package hub3

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	contactAttributesPrefix   = "contact_attributes."
	underagedAttributesPrefix = "underaged_attributes."
	customTextPrefix          = "custom_text."

	legacyContactIDToken = "{contact_id}"
)

// Token is one element of a parsed reference or description template.
// The concrete types are Literal, Space, ContactAttribute, UnderagedAttribute,
// CustomText, LegacyContactID and Unknown.
type Token interface {
	isToken()
}

type Literal struct {
	Text string
}

// Space separates two words.
type Space struct{}

// ContactAttribute is {{contact_attributes.Name}}.
type ContactAttribute struct {
	Name string
}

// UnderagedAttribute is {{underaged_attributes.Name}}; it reads the dependent record.
type UnderagedAttribute struct {
	Name string
}

// CustomText is {{custom_text.Value}}. The value was inlined when the
// template was authored and is emitted as is.
type CustomText struct {
	Value string
}

// LegacyContactID is the old single-brace {contact_id} token.
type LegacyContactID struct{}

// Unknown is a {{...}} placeholder with an unrecognised shape.
type Unknown struct {
	Raw string
}

func (Literal) isToken()            {}
func (Space) isToken()              {}
func (ContactAttribute) isToken()   {}
func (UnderagedAttribute) isToken() {}
func (CustomText) isToken()         {}
func (LegacyContactID) isToken()    {}
func (Unknown) isToken()            {}

// ParseTemplate splits tmpl into tokens. A run of white space becomes one
// Space. A {{...}} placeholder is read up to its closing braces, may contain
// spaces and may sit inside a word next to literal text.
func ParseTemplate(tmpl string) []Token {
	var (
		tokens []Token
		space  bool
	)
	emit := func(t Token) {
		if space && len(tokens) > 0 {
			tokens = append(tokens, Space{})
		}
		space = false
		tokens = append(tokens, t)
	}

	rest := tmpl
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		if unicode.IsSpace(r) {
			space = true
			rest = rest[size:]
			continue
		}

		if strings.HasPrefix(rest, "{{") {
			if end := strings.Index(rest[2:], "}}"); end >= 0 {
				emit(parsePlaceholder(rest[2 : 2+end]))
				rest = rest[2+end+2:]
				continue
			}
		}
		if strings.HasPrefix(rest, legacyContactIDToken) {
			emit(LegacyContactID{})
			rest = rest[len(legacyContactIDToken):]
			continue
		}

		end := literalEnd(rest)
		emit(Literal{Text: rest[:end]})
		rest = rest[end:]
	}
	return tokens
}

// literalEnd returns the length of the literal text at the start of s. The
// first rune always belongs to it, so an unterminated "{{" stays literal.
func literalEnd(s string) int {
	for i, r := range s {
		if i == 0 {
			continue
		}
		if unicode.IsSpace(r) || strings.HasPrefix(s[i:], "{{") || strings.HasPrefix(s[i:], legacyContactIDToken) {
			return i
		}
	}
	return len(s)
}

func parsePlaceholder(inner string) Token {
	body := strings.TrimSpace(inner)
	raw := "{{" + inner + "}}"

	var (
		tok  Token
		name string
	)
	switch {
	case strings.HasPrefix(body, contactAttributesPrefix):
		name = strings.TrimPrefix(body, contactAttributesPrefix)
		tok = ContactAttribute{Name: name}
	case strings.HasPrefix(body, underagedAttributesPrefix):
		name = strings.TrimPrefix(body, underagedAttributesPrefix)
		tok = UnderagedAttribute{Name: name}
	case strings.HasPrefix(body, customTextPrefix):
		name = strings.TrimPrefix(body, customTextPrefix)
		tok = CustomText{Value: name}
	default:
		return Unknown{Raw: raw}
	}
	if name == "" {
		return Unknown{Raw: raw}
	}
	return tok
}

// singlePlaceholder returns the token when tmpl is exactly one {{...}}.
func singlePlaceholder(tmpl string) (Token, bool) {
	if !strings.HasPrefix(tmpl, "{{") || !strings.HasSuffix(tmpl, "}}") || len(tmpl) < 4 {
		return nil, false
	}
	inner := tmpl[2 : len(tmpl)-2]
	if strings.Contains(inner, "{{") || strings.Contains(inner, "}}") {
		return nil, false
	}
	return parsePlaceholder(inner), true
}
