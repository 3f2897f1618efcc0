package hub3

import (
	"strconv"
	"strings"
)

const pinAttribute = "pin"

// Record is the view of a contact (or its dependent) that templates read.
type Record struct {
	ID         int64
	Attributes map[string]string
}

// Attribute looks up name. "id" falls back to the record ID when the map
// does not carry it.
func (r Record) Attribute(name string) (string, bool) {
	if v, ok := r.Attributes[name]; ok {
		return v, true
	}
	if name == "id" {
		return strconv.FormatInt(r.ID, 10), true
	}
	return "", false
}

func (r Record) idString() string {
	id := strconv.FormatInt(r.ID, 10)
	if !isDigits(id) {
		return ""
	}
	return id
}

// ResolveReference resolves a reference template against the primary record
// and the optional dependent. The result always consists of digits only:
// anything else is replaced by the primary record's id and reported as a
// Warning.
func ResolveReference(tmpl string, primary Record, dependent *Record) (string, []Warning) {
	tmpl = strings.TrimSpace(tmpl)
	if tmpl == "" {
		return "", nil
	}

	var out string
	if tok, ok := singlePlaceholder(tmpl); ok {
		var resolved bool
		switch t := tok.(type) {
		case ContactAttribute:
			if t.Name == pinAttribute {
				out, resolved = primary.Attributes[pinAttribute], true
			}
		case UnderagedAttribute:
			if t.Name == pinAttribute {
				if dependent != nil {
					out = dependent.Attributes[pinAttribute]
				}
				resolved = true
			}
		}
		if !resolved {
			return "", []Warning{{
				Field:  "reference",
				Token:  tmpl,
				Err:    ErrUnresolvedPlaceholder,
				Detail: "only the pin attribute can be used as a reference",
			}}
		}
		out = strings.TrimSpace(out)
	} else {
		out = strings.ReplaceAll(tmpl, legacyContactIDToken, primary.idString())
	}

	if isDigits(out) {
		return out, nil
	}
	fallback := primary.idString()
	return fallback, []Warning{{
		Field:  "reference",
		Token:  out,
		Err:    ErrNonNumericReference,
		Detail: "replaced with contact id " + fallback,
	}}
}

// ResolveDescription resolves every token of a description template. Tokens
// of one word are concatenated; non-empty words are joined with single spaces.
func ResolveDescription(tmpl string, primary Record, dependent *Record) (string, []Warning) {
	var (
		words    []string
		word     strings.Builder
		warnings []Warning
	)
	unresolved := func(token, detail string) {
		warnings = append(warnings, Warning{
			Field:  "description",
			Token:  token,
			Err:    ErrUnresolvedPlaceholder,
			Detail: detail,
		})
	}
	flush := func() {
		if w := strings.TrimSpace(word.String()); w != "" {
			words = append(words, w)
		}
		word.Reset()
	}

	for _, tok := range ParseTemplate(tmpl) {
		var v string
		switch t := tok.(type) {
		case Space:
			flush()
			continue
		case Literal:
			if strings.Contains(t.Text, "{{") {
				unresolved(t.Text, "unterminated placeholder")
			}
			v = t.Text
		case CustomText:
			v = t.Value
		case LegacyContactID:
			v = primary.idString()
		case ContactAttribute:
			val, ok := primary.Attribute(t.Name)
			if !ok {
				unresolved(contactAttributesPrefix+t.Name, "unknown contact attribute")
			}
			v = val
		case UnderagedAttribute:
			if dependent == nil {
				break
			}
			val, ok := dependent.Attribute(t.Name)
			if !ok {
				unresolved(underagedAttributesPrefix+t.Name, "unknown underaged attribute")
			}
			v = val
		case Unknown:
			unresolved(t.Raw, "unknown placeholder")
		}
		word.WriteString(v)
	}
	flush()

	return strings.Join(words, " "), warnings
}
