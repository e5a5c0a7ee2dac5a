package validation

import (
	"errors"
	"strings"
	"testing"

	"ticketera/internal/models"
)

func codeOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		return ""
	}
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error %v is not a *FieldError", err)
	}
	return fe.Code
}

func TestValidateDNI(t *testing.T) {
	cases := []struct {
		in   string
		code string
		want string
	}{
		{"12345678", "", "12345678"},
		{"12.345.678", "", "12345678"},
		{"00000000", CodeInvalidValue, ""},
		{"11111111", CodeInvalidValue, ""},
		{"99999999", CodeInvalidValue, ""},
		{"1234567", CodeInvalidFormat, ""},
		{"123456789", CodeInvalidFormat, ""},
		{"abcdefgh", CodeInvalidFormat, ""},
		{"", CodeRequired, ""},
	}
	for _, tc := range cases {
		got, err := ValidateDNI(tc.in)
		if c := codeOf(t, err); c != tc.code {
			t.Errorf("ValidateDNI(%q) code = %q, want %q", tc.in, c, tc.code)
		}
		if got != tc.want {
			t.Errorf("ValidateDNI(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateName(t *testing.T) {
	cases := []struct {
		in   string
		code string
	}{
		{"Juan Perez", ""},
		{"  José Ñuñez  ", ""},
		{"ÁLVARO", ""},
		{"Zoë Brontë", ""},
		{"Juan\tPerez", CodeInvalidFormat},
		{"Juan\nPerez", CodeInvalidFormat},
		{"Jo", CodeInvalidFormat},
		{"   ", CodeInvalidFormat},
		{"Juan2", CodeInvalidFormat},
		{"Juan-Perez", CodeInvalidFormat},
		{strings.Repeat("a", 101), CodeInvalidFormat},
		{strings.Repeat("a", 100), ""},
	}
	for _, tc := range cases {
		_, err := ValidateName(tc.in)
		if c := codeOf(t, err); c != tc.code {
			t.Errorf("ValidateName(%q) code = %q, want %q", tc.in, c, tc.code)
		}
	}
}

func TestValidateNameCollapsesSpaces(t *testing.T) {
	got, err := ValidateName(" Juan   Perez ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Juan Perez" {
		t.Fatalf("got %q, want %q", got, "Juan Perez")
	}
}

func TestValidateFormErrorOrder(t *testing.T) {
	cases := []struct {
		name  string
		in    models.ContactInfo
		field string
		code  string
	}{
		{"email before dni", models.ContactInfo{FullName: "Juan Perez", Email: "x", DNI: "1"}, "email", CodeInvalidFormat},
		{"missing dni", models.ContactInfo{FullName: "Juan Perez", Email: "juan@x.com"}, "dni", CodeRequired},
		{"letters only dni", models.ContactInfo{FullName: "Juan Perez", Email: "juan@x.com", DNI: "abcdefgh"}, "dni", CodeInvalidFormat},
		{"short phone", models.ContactInfo{FullName: "Juan Perez", Email: "juan@x.com", DNI: "12345678", Phone: "123"}, "phone", CodeInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateForm(tc.in)
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("want FieldError, got %v", err)
			}
			if fe.Field != tc.field || fe.Code != tc.code {
				t.Fatalf("got %s/%s, want %s/%s", fe.Field, fe.Code, tc.field, tc.code)
			}
			if fe.Message == "" {
				t.Fatal("empty message")
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		in   string
		code string
		want string
	}{
		{"juan@x.com", "", "juan@x.com"},
		{"  Juan@X.COM ", "", "juan@x.com"},
		{"", CodeRequired, ""},
		{"juan@x", CodeInvalidFormat, ""},
		{"juan x@y.com", CodeInvalidFormat, ""},
		{strings.Repeat("a", 250) + "@x.com", CodeInvalidFormat, ""},
	}
	for _, tc := range cases {
		got, err := ValidateEmail(tc.in)
		if c := codeOf(t, err); c != tc.code {
			t.Errorf("ValidateEmail(%q) code = %q, want %q", tc.in, c, tc.code)
		}
		if got != tc.want {
			t.Errorf("ValidateEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		in   string
		code string
		want string
	}{
		{"", "", ""},
		{"  ", "", ""},
		{"987654321", "", "987654321"},
		{"987 654 321", "", "987654321"},
		{"98765432", CodeInvalidFormat, ""},
		{"+51 987654321", CodeInvalidFormat, ""},
	}
	for _, tc := range cases {
		got, err := ValidatePhone(tc.in)
		if c := codeOf(t, err); c != tc.code {
			t.Errorf("ValidatePhone(%q) code = %q, want %q", tc.in, c, tc.code)
		}
		if got != tc.want {
			t.Errorf("ValidatePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateFormNormalizes(t *testing.T) {
	got, err := ValidateForm(models.ContactInfo{
		FullName: "  Juan Perez ",
		DNI:      "1234-5678",
		Email:    " JUAN@X.com",
		Phone:    "987-654-321",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.ContactInfo{FullName: "Juan Perez", DNI: "12345678", Email: "juan@x.com", Phone: "987654321"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestValidateFormStopsAtFirstError(t *testing.T) {
	_, err := ValidateForm(models.ContactInfo{FullName: "Jo", Email: "", DNI: "1"})
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("want FieldError, got %v", err)
	}
	if fe.Field != "full_name" {
		t.Fatalf("field = %q, want full_name", fe.Field)
	}

	_, err = ValidateForm(models.ContactInfo{FullName: "Juan Perez", Email: "juan@x.com", DNI: "00000000"})
	if !errors.As(err, &fe) || fe.Field != "dni" || fe.Code != CodeInvalidValue {
		t.Fatalf("got %v, want dni invalid_value", err)
	}
}
