// Package client describes the "Happy Clients" testimonials.
package client

import (
	"flipper-backend/internal/resource"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	Kind       = "clients"
	Collection = "clients"
)

const (
	FieldName        = "name"
	FieldDesignation = "designation"
	FieldDescription = "description"
	FieldImage       = "image"
)

// Designation values accepted for a client
const (
	DesignationCEO          = "CEO"
	DesignationWebDeveloper = "Web Developer"
	DesignationDesigner     = "Designer"
	DesignationManager      = "Manager"
	DesignationOther        = "Other"
)

// Designations lists the allowed designation values in display order
var Designations = []string{
	DesignationCEO,
	DesignationWebDeveloper,
	DesignationDesigner,
	DesignationManager,
	DesignationOther,
}

func designationRule() validation.Rule {
	allowed := make([]interface{}, 0, len(Designations))
	for _, d := range Designations {
		allowed = append(allowed, d)
	}
	return validation.In(allowed...).Error("must be one of: CEO, Web Developer, Designer, Manager, Other")
}

// Schema returns the client descriptor: admin-managed, fully mutable
func Schema() *resource.Schema {
	return &resource.Schema{
		Kind:           Kind,
		Collection:     Collection,
		Singular:       "Client",
		TimestampField: "createdAt",
		Operations:     resource.ReadWrite,
		Fields: []resource.Field{
			{
				Name:  FieldName,
				Trim:  true,
				Rules: []validation.Rule{validation.Required.Error("name is required"), validation.Length(0, 200)},
			},
			{
				Name:  FieldDesignation,
				Rules: []validation.Rule{validation.Required.Error("designation is required"), designationRule()},
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
