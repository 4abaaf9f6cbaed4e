package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LocationBody marks a field error as coming from the request body.
const LocationBody = "body"

// Resources a ValidationError can refer to.
const (
	ResourceCredentials = "credentials"
	ResourcePotion      = "potion"
)

// FieldError describes one invalid field of a request.
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"msg"`
	Location string `json:"location"`
}

// ValidationError collects every invalid field of a request so they can be
// reported together.
type ValidationError struct {
	Resource string
	Errors   []FieldError
}

func NewValidationError(resource string) *ValidationError {
	return &ValidationError{Resource: resource}
}

// Add records a violation for field. Only the first violation per field is kept.
func (e *ValidationError) Add(field, msg string) {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return
		}
	}
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg, Location: LocationBody})
}

// Has reports whether field already has a violation.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// ErrorOrNil returns e when it holds violations and nil otherwise.
func (e *ValidationError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Resource != "" {
		b.WriteString(e.Resource)
		b.WriteByte(' ')
	}
	b.WriteString("validation failed")
	for i, fe := range e.Errors {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(fe.Field)
		b.WriteString(": ")
		b.WriteString(fe.Message)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrValidation) hold for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// CleanInput strips control characters and trims surrounding whitespace.
func CleanInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// SanitizeInput cleans s and escapes HTML-significant characters.
func SanitizeInput(s string) string {
	return htmlEscaper.Replace(CleanInput(s))
}

// ValidateCredentials cleans a register or login body and checks the
// length rules on the cleaned text. The returned values are escaped only
// after the checks pass. Failures are reported as a *ValidationError
// listing every failing field.
func ValidateCredentials(input CredentialsInput) (CredentialsInput, error) {
	name := CleanInput(input.Name)
	password := CleanInput(input.Password)

	verr := NewValidationError(ResourceCredentials)

	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		verr.Add("name", "username is required")
	case n < MinNameLength || n > MaxNameLength:
		verr.Add("name", "username must be between 3 and 30 characters")
	}

	switch n := utf8.RuneCountInString(password); {
	case n == 0:
		verr.Add("password", "password is required")
	case n < MinPasswordLength:
		verr.Add("password", "password must be at least 6 characters")
	}

	if err := verr.ErrorOrNil(); err != nil {
		return CredentialsInput{}, err
	}
	return CredentialsInput{
		Name:     htmlEscaper.Replace(name),
		Password: htmlEscaper.Replace(password),
	}, nil
}
