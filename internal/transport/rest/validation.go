package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"hub3-slips/internal/repository"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// report json names, not Go field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if s, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return false
	})
	_ = Validate.RegisterTranslation(notBlankTag, Translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " cannot be blank"
		},
	)
}

type ValidationError struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// validateStruct runs the validator and folds its errors into one
// *ValidationError whose message names the first failing field.
func validateStruct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		msg := fe.Translate(Translator)
		if out.Field == "" {
			out.Field, out.Message = fe.Field(), msg
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && err != io.EOF {
		return &ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}

type PreviewRequest struct {
	TemplateID int64 `json:"template_id" validate:"required,gt=0"`
	ContactID  int64 `json:"contact_id" validate:"required,gt=0"`
}

func ValidatePreviewRequest(r *http.Request) (*PreviewRequest, error) {
	var req PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ValidatePreviewQuery reads template_id and contact_id from the query
// string.
func ValidatePreviewQuery(r *http.Request) (*PreviewRequest, error) {
	var req PreviewRequest

	q := r.URL.Query()
	for name, dst := range map[string]*int64{
		"template_id": &req.TemplateID,
		"contact_id":  &req.ContactID,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ValidationError{Field: name, Message: name + " must be an integer"}
		}
		*dst = v
	}

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

type BatchRequest struct {
	TemplateID int64   `json:"template_id" validate:"required,gt=0"`
	ContactIDs []int64 `json:"contact_ids" validate:"omitempty,max=50000,dive,gt=0"`
	MemberOnly bool    `json:"member_only"`
	City       *string `json:"city" validate:"omitempty,notblank,max=100"`
}

func ValidateBatchRequest(r *http.Request) (*BatchRequest, error) {
	var req BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *BatchRequest) ToContactsFilter() repository.ContactsFilter {
	f := repository.ContactsFilter{
		IDs:        r.ContactIDs,
		MemberOnly: r.MemberOnly,
	}
	if r.City != nil {
		city := strings.TrimSpace(*r.City)
		f.City = &city
	}
	return f
}
