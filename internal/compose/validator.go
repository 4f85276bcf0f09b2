// Package compose validates the forms that produce outgoing mail and
// templates, and turns them into backend requests.
package compose

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"

	"github.com/nhle/mailfront/internal/recipients"
)

// ErrTranslatorNotFound indicates the English translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// ValidationError maps a form field (its JSON name) to a readable message.
type ValidationError map[string]string

func (ve ValidationError) Error() string {
	if len(ve) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(ve)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Messages returns the field messages ordered by field name.
func (ve ValidationError) Messages() []string {
	fields := lo.Keys(ve)
	slices.Sort(fields)
	return lo.Map(fields, func(f string, _ int) string { return ve[f] })
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Validator checks form structs against their `validate` tags.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator builds a Validator with English messages and the
// mailaddr and portnum rules.
func NewValidator() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, fmt.Errorf("registering translations: %w", err)
	}

	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a ValidationError on failure.
func (v *Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := make(ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		ve[fe.Field()] = fe.Translate(v.translator)
	}
	return ve
}

func registerCustom(validate *validator.Validate, enTrans ut.Translator) error {
	err := validate.RegisterValidation("mailaddr", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && recipients.ValidAddress(s)
	})
	if err != nil {
		return fmt.Errorf("registering mailaddr: %w", err)
	}

	err = validate.RegisterValidation("portnum", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		n, err := strconv.Atoi(s)
		return err == nil && n >= 1 && n <= 65535
	})
	if err != nil {
		return fmt.Errorf("registering portnum: %w", err)
	}

	messages := map[string]string{
		"mailaddr": "{0} must be a valid email address",
		"portnum":  "{0} must be a port number between 1 and 65535",
	}
	for tag, text := range messages {
		err := validate.RegisterTranslation(tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(tag, text, false)
			},
			translateField,
		)
		if err != nil {
			return fmt.Errorf("registering %s translation: %w", tag, err)
		}
	}
	return nil
}

func translateField(ut ut.Translator, fe validator.FieldError) string {
	t, err := ut.T(fe.Tag(), fe.Field())
	if err != nil {
		slog.Warn("translating validation error", "tag", fe.Tag(), "error", err)
		return fe.Error()
	}
	return t
}
