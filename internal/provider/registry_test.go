package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planpilot/planpilot/internal/errors"
)

func TestRegistryRegisterAndOpen(t *testing.T) {
	registry := NewRegistry()

	var gotOptions map[string]string
	factory := func(options map[string]string) (Provider, error) {
		gotOptions = options
		return nil, nil
	}

	require.NoError(t, registry.Register("fake", factory))

	_, err := registry.Open("fake", map[string]string{"board_url": "fake://board"})
	require.NoError(t, err)
	assert.Equal(t, "fake://board", gotOptions["board_url"])
}

func TestRegistryDuplicateName(t *testing.T) {
	registry := NewRegistry()
	factory := func(options map[string]string) (Provider, error) { return nil, nil }

	require.NoError(t, registry.Register("fake", factory))
	err := registry.Register("fake", factory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryOpenUnknownTarget(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Open("jira", nil)
	require.Error(t, err)

	var perr *errors.PlanPilotError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeProviderNotFound, perr.Code)
}

func TestRegistryList(t *testing.T) {
	registry := NewRegistry()
	factory := func(options map[string]string) (Provider, error) { return nil, nil }

	assert.Empty(t, registry.List())

	require.NoError(t, registry.Register("a", factory))
	require.NoError(t, registry.Register("b", factory))
	assert.ElementsMatch(t, []string{"a", "b"}, registry.List())
}
