package edge_test

import (
	"testing"

	"github.com/syssam/velq/schema/edge"

	"github.com/stretchr/testify/assert"
)

func TestEdge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *edge.Descriptor
		validate func(t *testing.T, desc *edge.Descriptor)
	}{
		{
			name: "to_one",
			build: func() *edge.Descriptor {
				return edge.To("actor", "actor").Field("actor_id").Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Equal(t, "actor", desc.Name)
				assert.Equal(t, "actor", desc.Table)
				assert.Equal(t, edge.One, desc.Cardinality)
				assert.Equal(t, "actor_id", desc.Field)
				assert.Empty(t, desc.References)
			},
		},
		{
			name: "to_many",
			build: func() *edge.Descriptor {
				return edge.From("film_actors", "film_actor").Field("actor_id").Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Equal(t, "film_actors", desc.Name)
				assert.Equal(t, "film_actor", desc.Table)
				assert.Equal(t, edge.Many, desc.Cardinality)
				assert.Equal(t, "actor_id", desc.Field)
			},
		},
		{
			name: "references",
			build: func() *edge.Descriptor {
				return edge.To("language", "language").Field("language_code").References("code").Descriptor()
			},
			validate: func(t *testing.T, desc *edge.Descriptor) {
				assert.Equal(t, "language_code", desc.Field)
				assert.Equal(t, "code", desc.References)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, tt.build())
		})
	}
}

func TestCardinality_String(t *testing.T) {
	assert.Equal(t, "one", edge.One.String())
	assert.Equal(t, "many", edge.Many.String())
	assert.Equal(t, "invalid", edge.Cardinality(0).String())
}
