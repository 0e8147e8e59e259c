// Package project describes the portfolio projects shown on the landing page.
package project

import (
	"flipper-backend/internal/resource"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	Kind       = "projects"
	Collection = "projects"
)

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldImage       = "image"
)

// Schema returns the project descriptor: admin-managed, fully mutable
func Schema() *resource.Schema {
	return &resource.Schema{
		Kind:           Kind,
		Collection:     Collection,
		Singular:       "Project",
		TimestampField: "createdAt",
		Operations:     resource.ReadWrite,
		Fields: []resource.Field{
			{
				Name:  FieldName,
				Trim:  true,
				Rules: []validation.Rule{validation.Required.Error("name is required"), validation.Length(0, 200)},
			},
			{
				Name:  FieldDescription,
				Trim:  true,
				Rules: []validation.Rule{validation.Required.Error("description is required"), validation.Length(0, 5000)},
			},
			{
				Name:  FieldImage,
				Rules: []validation.Rule{validation.Required.Error("image is required")},
			},
		},
	}
}
