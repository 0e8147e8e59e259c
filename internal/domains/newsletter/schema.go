// Package newsletter describes newsletter subscriptions.
package newsletter

import (
	"flipper-backend/internal/resource"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	Kind       = "newsletters"
	Collection = "newsletters"
)

const FieldEmail = "email"

// MsgAlreadySubscribed is returned when the email is already on the list
const MsgAlreadySubscribed = "Email already subscribed"

// Schema returns the subscription descriptor: append-only, email unique in the store
func Schema() *resource.Schema {
	return &resource.Schema{
		Kind:           Kind,
		Collection:     Collection,
		Singular:       "Subscription",
		TimestampField: "subscribedAt",
		Operations:     resource.AppendOnly,
		Fields: []resource.Field{
			{
				Name:      FieldEmail,
				Trim:      true,
				Lowercase: true,
				Unique:    true,
				Rules: []validation.Rule{
					validation.Required.Error("email is required"),
					is.EmailFormat.Error("invalid email format"),
				},
			},
		},
		DuplicateMessages: map[string]string{
			FieldEmail: MsgAlreadySubscribed,
		},
	}
}
