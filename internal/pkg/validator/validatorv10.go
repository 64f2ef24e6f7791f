package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/strcase"
)

const (
	passwordMin = 6
	passwordMax = 72
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
	otpDigits  int
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match the JSON wire names.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// Option configures a V10Validator.
type Option func(*V10Validator)

// WithOTPDigits sets the code length enforced by the "otp" rule. Default 6.
func WithOTPDigits(n int) Option {
	return func(v *V10Validator) {
		if n > 0 {
			v.otpDigits = n
		}
	}
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator(opts ...Option) (*V10Validator, error) {
	v := &V10Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		otpDigits: 6,
	}
	for _, opt := range opts {
		opt(v)
	}

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(v.validate, enTrans); err != nil {
		return nil, err
	}

	if err := v.registerCustom(enTrans); err != nil {
		return nil, err
	}

	v.translator = enTrans

	return v, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}

	return errV10
}

func (v *V10Validator) registerCustom(enTrans ut.Translator) error {
	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{
			tag: "password",
			fn: func(fl validator.FieldLevel) bool {
				n := utf8.RuneCountInString(fl.Field().String())
				return n >= passwordMin && n <= passwordMax
			},
			message: "{0} must be " + strconv.Itoa(passwordMin) + "-" + strconv.Itoa(passwordMax) + " characters",
		},
		{
			tag: "otp",
			fn: func(fl validator.FieldLevel) bool {
				return otp.IsNumeric(fl.Field().String(), v.otpDigits)
			},
			message: "{0} must be " + strconv.Itoa(v.otpDigits) + " digits",
		},
	}

	for _, r := range rules {
		if err := v.validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}

		message := r.message
		err := v.validate.RegisterTranslation(r.tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(r.tag, message, false)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("warning: error translating", "tag", fe.Tag(), "error", err)
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}
