package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acopio/formflow/pkg/registry"
)

func TestRegistryExecute(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("notify-sms", func(ctx context.Context, args map[string]any) (any, error) {
		return "sent to " + args["phone"].(string), nil
	})

	result, err := reg.Execute(context.Background(), "notify-sms", map[string]any{"phone": "555"})
	require.NoError(t, err)
	assert.Equal(t, "sent to 555", result)
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := registry.NewRegistry()
	_, err := reg.Execute(context.Background(), "ghost", nil)
	assert.ErrorContains(t, err, "tool not found")
}

func TestRegistryOverwriteAndHas(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("sync", func(ctx context.Context, args map[string]any) (any, error) {
		return nil, errors.New("first")
	})
	reg.Register("sync", func(ctx context.Context, args map[string]any) (any, error) {
		return "second", nil
	})

	assert.True(t, reg.Has("sync"))
	assert.False(t, reg.Has("other"))

	result, err := reg.Execute(context.Background(), "sync", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", result)
}
