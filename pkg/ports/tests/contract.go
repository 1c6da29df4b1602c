// Package tests provides reusable contract suites for port implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acopio/formflow/pkg/domain"
	"github.com/acopio/formflow/pkg/ports"
)

// RunSchemaStoreContract verifies that a SchemaStore implementation
// adheres to the interface contract.
func RunSchemaStoreContract(t *testing.T, store ports.SchemaStore) {
	ctx := context.Background()
	formID := "contract-form-" + time.Now().Format("20060102150405")

	doc := &domain.Document{
		InstructionStart: "q1",
		ModuleID:         "gathering",
		Instructions: []domain.Instruction{
			{
				ID:     "q1",
				Gather: &domain.GatherField{Name: "producer_name", ValueType: domain.ValueText},
				Conditions: []domain.Condition{
					{ID: "c1", Type: domain.ConditionBySuccess, NextInstructionID: "q2"},
				},
			},
			{
				ID:     "q2",
				Gather: &domain.GatherField{Name: "net_weight", ValueType: domain.ValueNumber},
			},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		id, err := store.SaveSchema(ctx, formID, doc)
		require.NoError(t, err, "SaveSchema should not return error")
		assert.NotEmpty(t, id)

		loaded, err := store.LoadSchema(ctx, formID)
		require.NoError(t, err, "LoadSchema should not return error")
		assert.Equal(t, doc.InstructionStart, loaded.InstructionStart)
		require.Len(t, loaded.Instructions, 2)
		assert.Equal(t, "producer_name", loaded.Instructions[0].Gather.Name)
		assert.Equal(t, domain.ConditionBySuccess, loaded.Instructions[0].Conditions[0].Type)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadSchema(ctx, "non-existent-"+formID)
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		_, err := store.SaveSchema(ctx, formID, doc)
		require.NoError(t, err)

		require.NoError(t, store.DeleteSchema(ctx, formID))

		_, err = store.LoadSchema(ctx, formID)
		assert.ErrorIs(t, err, domain.ErrSchemaNotFound, "Load after Delete should return ErrSchemaNotFound")
	})
}
