package resource

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Operation is one entry of a kind's operation allow-list
type Operation uint8

const (
	OpList Operation = 1 << iota
	OpCreate
	OpUpdate
	OpDelete
)

// Common allow-lists
const (
	// ReadWrite kinds are managed from the admin panel
	ReadWrite = OpList | OpCreate | OpUpdate | OpDelete
	// AppendOnly kinds only accept public submissions
	AppendOnly = OpList | OpCreate
)

func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", uint8(o))
	}
}

var errNotString = validation.NewError("validation_is_string", "must be a string")

// Field describes one text attribute of a record and how it is validated
type Field struct {
	Name      string
	Trim      bool // strip surrounding whitespace before validation
	Lowercase bool // normalize to lower case before validation
	Unique    bool // enforced by the store
	Rules     []validation.Rule
}

// Schema is the descriptor a Manager is parameterized by
type Schema struct {
	Kind           string // URL segment, e.g. "projects"
	Collection     string // store collection name
	Singular       string // "Project", used in messages
	TimestampField string // JSON name of the creation timestamp
	Fields         []Field
	Operations     Operation

	// DuplicateMessages maps a unique field to the message returned when it collides
	DuplicateMessages map[string]string
}

// Allows reports whether op is part of the kind's allow-list
func (s *Schema) Allows(op Operation) bool {
	return s.Operations&op != 0
}

// Field looks up a field descriptor by name
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the schema field names in declaration order
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// UniqueFields returns the names of fields the store must keep unique
func (s *Schema) UniqueFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Unique {
			names = append(names, f.Name)
		}
	}
	return names
}

// CollectionSpec describes what the store has to provision for this kind
func (s *Schema) CollectionSpec() CollectionSpec {
	return CollectionSpec{
		Name:         s.Collection,
		UniqueFields: s.UniqueFields(),
	}
}

// duplicateMessage returns the message for a unique-constraint collision on field
func (s *Schema) duplicateMessage(field string) string {
	if msg, ok := s.DuplicateMessages[field]; ok {
		return msg
	}
	return fmt.Sprintf("%s already exists", field)
}

// ========================================
// INPUT PARSING
// ========================================

// normalize converts a raw JSON value into the stored text form
func (f Field) normalize(raw any) (string, error) {
	value, ok := raw.(string)
	if !ok {
		return "", errNotString
	}
	if f.Trim {
		value = strings.TrimSpace(value)
	}
	if f.Lowercase {
		value = strings.ToLower(value)
	}
	return value, nil
}

// ParseCreate extracts every schema field from input and validates all of them.
// Keys outside the schema are ignored.
func (s *Schema) ParseCreate(input map[string]any) (map[string]string, error) {
	fields := make(map[string]string, len(s.Fields))
	errs := validation.Errors{}

	for _, f := range s.Fields {
		raw, present := input[f.Name]
		if !present || raw == nil {
			raw = ""
		}
		value, err := f.normalize(raw)
		if err != nil {
			errs[f.Name] = err
			continue
		}
		if err := validation.Validate(value, f.Rules...); err != nil {
			errs[f.Name] = err
			continue
		}
		fields[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, NewValidationError(errs.Error())
	}
	return fields, nil
}

// ParsePatch extracts only the schema fields present in input and validates them.
// Absent or null keys are left out so the stored values survive.
func (s *Schema) ParsePatch(input map[string]any) (map[string]string, error) {
	fields := make(map[string]string)
	errs := validation.Errors{}

	for _, f := range s.Fields {
		raw, present := input[f.Name]
		if !present || raw == nil {
			continue
		}
		value, err := f.normalize(raw)
		if err != nil {
			errs[f.Name] = err
			continue
		}
		if err := validation.Validate(value, f.Rules...); err != nil {
			errs[f.Name] = err
			continue
		}
		fields[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, NewValidationError(errs.Error())
	}
	return fields, nil
}
