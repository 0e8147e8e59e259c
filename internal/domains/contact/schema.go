// Package contact describes "Get In Touch" form submissions.
package contact

import (
	"flipper-backend/internal/resource"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	Kind       = "contacts"
	Collection = "contacts"
)

const (
	FieldName  = "name"
	FieldEmail = "email"
	FieldPhone = "phone"
	FieldCity  = "city"
)

// Schema returns the contact descriptor: append-only public submissions
func Schema() *resource.Schema {
	return &resource.Schema{
		Kind:           Kind,
		Collection:     Collection,
		Singular:       "Contact",
		TimestampField: "createdAt",
		Operations:     resource.AppendOnly,
		Fields: []resource.Field{
			{
				Name:  FieldName,
				Trim:  true,
				Rules: []validation.Rule{validation.Required.Error("name is required"), validation.Length(0, 200)},
			},
			{
				Name:      FieldEmail,
				Trim:      true,
				Lowercase: true,
				Rules: []validation.Rule{
					validation.Required.Error("email is required"),
					is.EmailFormat.Error("invalid email format"),
				},
			},
			{
				Name:  FieldPhone,
				Trim:  true,
				Rules: []validation.Rule{validation.Required.Error("phone is required"), validation.Length(0, 40)},
			},
			{
				Name:  FieldCity,
				Trim:  true,
				Rules: []validation.Rule{validation.Required.Error("city is required"), validation.Length(0, 120)},
			},
		},
	}
}
