package resource_test

import (
	"testing"

	"flipper-backend/internal/domains/client"
	"flipper-backend/internal/domains/contact"
	"flipper-backend/internal/domains/newsletter"
	"flipper-backend/internal/domains/project"
	"flipper-backend/internal/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaOperations(t *testing.T) {
	tests := []struct {
		schema *resource.Schema
		update bool
	}{
		{project.Schema(), true},
		{client.Schema(), true},
		{contact.Schema(), false},
		{newsletter.Schema(), false},
	}

	for _, tt := range tests {
		t.Run(tt.schema.Kind, func(t *testing.T) {
			assert.True(t, tt.schema.Allows(resource.OpList))
			assert.True(t, tt.schema.Allows(resource.OpCreate))
			assert.Equal(t, tt.update, tt.schema.Allows(resource.OpUpdate))
			assert.Equal(t, tt.update, tt.schema.Allows(resource.OpDelete))
		})
	}
}

func TestSchemaCollectionSpec(t *testing.T) {
	spec := newsletter.Schema().CollectionSpec()
	assert.Equal(t, "newsletters", spec.Name)
	assert.Equal(t, []string{"email"}, spec.UniqueFields)

	assert.Empty(t, project.Schema().CollectionSpec().UniqueFields)
}

func TestSchemaParsePatch(t *testing.T) {
	s := client.Schema()

	t.Run("keeps only present schema fields", func(t *testing.T) {
		patch, err := s.ParsePatch(map[string]any{
			"designation": "Designer",
			"image":       nil,
			"unknown":     "x",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"designation": "Designer"}, patch)
	})

	t.Run("collects every failing field", func(t *testing.T) {
		_, err := s.ParsePatch(map[string]any{
			"designation": "Architect",
			"name":        false,
		})
		require.Error(t, err)
		msg := resource.GetErrorMessage(err)
		assert.Contains(t, msg, "designation:")
		assert.Contains(t, msg, "name: must be a string")
	})
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "update", resource.OpUpdate.String())
	assert.Equal(t, "operation(0)", resource.Operation(0).String())
}
