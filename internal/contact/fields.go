package contact

import (
	"errors"
	"fmt"
	"strings"
)

// Field identifies one input of the contact form.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// ErrUnknownField is returned by ParseField for names outside the form.
var ErrUnknownField = errors.New("contact: unknown field")

// requiredFields is also the order missing fields are reported in.
var requiredFields = []Field{FieldName, FieldEmail, FieldMessage}

// ParseField maps a form input name to a Field.
func ParseField(name string) (Field, error) {
	switch f := Field(name); f {
	case FieldName, FieldEmail, FieldSubject, FieldMessage:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Fields is what the visitor has typed so far. The zero value is an empty form.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Get returns the value held for f.
func (f Fields) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldSubject:
		return f.Subject
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Set overwrites the value held for field. Unknown fields are ignored.
func (f *Fields) Set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	}
}

// Missing lists the required fields that are empty once trimmed.
// Subject is optional and never reported.
func (f Fields) Missing() []Field {
	var missing []Field
	for _, field := range requiredFields {
		if strings.TrimSpace(f.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
