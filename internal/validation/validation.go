package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	notBlankTag    = "notblank"
	alumniEmailTag = "alumni_email"

	DefaultAlumniPattern = `^l\d{6}@lhr\.nu\.edu\.pk$`
)

// Error carries per-field messages keyed by the JSON field name.
type Error struct {
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// NewError builds an Error with a single field message.
func NewError(field, message string) *Error {
	return &Error{
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

type Validator struct {
	validate      *validator.Validate
	translator    ut.Translator
	alumniPattern *regexp.Regexp
}

type Option func(*Validator)

func WithAlumniPattern(pattern *regexp.Regexp) Option {
	return func(v *Validator) {
		if pattern != nil {
			v.alumniPattern = pattern
		}
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		alumniPattern: regexp.MustCompile(DefaultAlumniPattern),
	}
	for _, opt := range opts {
		opt(v)
	}

	english := en.New()
	uni := ut.New(english, english)
	v.translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)

	// Report JSON (or form) names instead of Go field names.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.validate.RegisterValidation(notBlankTag, notBlank)
	_ = v.validate.RegisterValidation(alumniEmailTag, v.alumniEmail)

	v.registerCustomTranslation(notBlankTag, "{0} may not be blank")
	v.registerCustomTranslation(alumniEmailTag, "{0} must be in the format lnnnnnn@lhr.nu.edu.pk")

	return v
}

// Struct validates s and returns an *Error with translated field messages.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg := fe.Translate(v.translator)
		verr.Fields[fe.Field()] = msg
		if verr.Message == "" {
			verr.Message = msg
		}
	}
	return verr
}

// AlumniEmail reports whether email matches the configured alumni pattern.
func (v *Validator) AlumniEmail(email string) bool {
	return v.alumniPattern.MatchString(email)
}

func (v *Validator) registerCustomTranslation(tag, text string) {
	_ = v.validate.RegisterTranslation(tag, v.translator,
		func(trans ut.Translator) error {
			return trans.Add(tag, text, true)
		},
		func(trans ut.Translator, fe validator.FieldError) string {
			msg, err := trans.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func (v *Validator) alumniEmail(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return v.alumniPattern.MatchString(str)
	}
	return false
}
