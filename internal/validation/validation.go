// Package validation checks and normalizes the purchase contact form.
// All functions are pure; nothing here touches the network or storage.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"ticketera/internal/models"
)

const (
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid_format"
	CodeInvalidValue  = "invalid_value"
)

var (
	nameRe     = regexp.MustCompile(`^\p{L}+( \p{L}+)*$`)
	mailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigit   = regexp.MustCompile(`\D`)
	spaceRunRe = regexp.MustCompile(` {2,}`)
)

// contactForm is the normalized form in check order: name, email, dni, phone.
// DNIInput keeps the trimmed raw value so "required" is decided before digits are stripped.
type contactForm struct {
	FullName string `field:"full_name" validate:"min=3,max=100,personname"`
	Email    string `field:"email" validate:"required,mailshape,email,max=255"`
	DNIInput string `field:"dni" validate:"required"`
	DNI      string `field:"dni" validate:"len=8,numeric,notsamedigits"`
	Phone    string `field:"phone" validate:"omitempty,len=9,numeric"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return nameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("mailshape", func(fl validator.FieldLevel) bool {
		return mailRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notsamedigits", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || strings.Count(s, s[:1]) != len(s)
	})
	return v
}

// FieldError: first failing field of the form.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type rule struct {
	code, msg string
}

// rules by "<field>.<tag>"
var rules = map[string]rule{
	"full_name.min":        {CodeInvalidFormat, "name must be at least 3 characters"},
	"full_name.max":        {CodeInvalidFormat, "name must not exceed 100 characters"},
	"full_name.personname": {CodeInvalidFormat, "name may only contain letters and spaces"},
	"email.required":       {CodeRequired, "email is required"},
	"email.mailshape":      {CodeInvalidFormat, "email format is not valid"},
	"email.email":          {CodeInvalidFormat, "email format is not valid"},
	"email.max":            {CodeInvalidFormat, "email is too long"},
	"dni.required":         {CodeRequired, "dni is required"},
	"dni.len":              {CodeInvalidFormat, "dni must have exactly 8 digits"},
	"dni.numeric":          {CodeInvalidFormat, "dni must have exactly 8 digits"},
	"dni.notsamedigits":    {CodeInvalidValue, "dni is not valid"},
	"phone.len":            {CodeInvalidFormat, "phone must have exactly 9 digits"},
	"phone.numeric":        {CodeInvalidFormat, "phone must have exactly 9 digits"},
}

// toFieldError maps the first validator error; errors come back in struct field order.
func toFieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	r, ok := rules[fe.Field()+"."+fe.Tag()]
	if !ok {
		r = rule{CodeInvalidFormat, fe.Field() + " is not valid"}
	}
	return &FieldError{Field: fe.Field(), Code: r.code, Message: r.msg}
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

func normalize(raw models.ContactInfo) contactForm {
	return contactForm{
		FullName: spaceRunRe.ReplaceAllString(strings.TrimSpace(raw.FullName), " "),
		Email:    strings.ToLower(strings.TrimSpace(raw.Email)),
		DNIInput: strings.TrimSpace(raw.DNI),
		DNI:      DigitsOnly(raw.DNI),
		Phone:    DigitsOnly(raw.Phone),
	}
}

func check(f contactForm, fields ...string) error {
	if err := validate.StructPartial(f, fields...); err != nil {
		return toFieldError(err)
	}
	return nil
}

// ValidateName returns the trimmed name with inner space runs collapsed.
func ValidateName(s string) (string, error) {
	f := normalize(models.ContactInfo{FullName: s})
	if err := check(f, "FullName"); err != nil {
		return "", err
	}
	return f.FullName, nil
}

// ValidateEmail returns the trimmed, lower-cased email.
func ValidateEmail(s string) (string, error) {
	f := normalize(models.ContactInfo{Email: s})
	if err := check(f, "Email"); err != nil {
		return "", err
	}
	return f.Email, nil
}

// ValidateDNI returns the digit-only DNI.
func ValidateDNI(s string) (string, error) {
	f := normalize(models.ContactInfo{DNI: s})
	if err := check(f, "DNIInput", "DNI"); err != nil {
		return "", err
	}
	return f.DNI, nil
}

// ValidatePhone: optional field, empty is valid.
func ValidatePhone(s string) (string, error) {
	f := normalize(models.ContactInfo{Phone: s})
	if err := check(f, "Phone"); err != nil {
		return "", err
	}
	return f.Phone, nil
}

// ValidateForm runs name -> email -> dni -> phone and stops at the first error.
func ValidateForm(raw models.ContactInfo) (models.ContactInfo, error) {
	f := normalize(raw)
	if err := validate.Struct(f); err != nil {
		return models.ContactInfo{}, toFieldError(err)
	}
	return models.ContactInfo{FullName: f.FullName, DNI: f.DNI, Email: f.Email, Phone: f.Phone}, nil
}
