package validate

import "fmt"

// Kind classifies a field validation failure
type Kind string

const (
	// MissingField is returned when a required field is absent, null or blank
	MissingField Kind = "_required"
	// InvalidFormat is returned when a field does not fully match its format
	InvalidFormat Kind = "_invalid"
)

// FieldError reports the first field that failed validation
type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Field, e.Kind, e.Message)
}

// NewMissingFieldError creates a MissingField error for field
func NewMissingFieldError(field string) *FieldError {
	return &FieldError{
		Field:   field,
		Kind:    MissingField,
		Message: fmt.Sprintf("O campo %q é obrigatório", field),
	}
}

// NewInvalidFormatError creates an InvalidFormat error for field.
// hint is the human-readable format description and may be empty.
func NewInvalidFormatError(field, hint string) *FieldError {
	msg := fmt.Sprintf("Campo %q inválido.", field)
	if hint != "" {
		msg += " " + hint
	}
	return &FieldError{
		Field:   field,
		Kind:    InvalidFormat,
		Message: msg,
	}
}
