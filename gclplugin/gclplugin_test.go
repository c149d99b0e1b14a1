package gclplugin_test

import (
	"testing"

	"github.com/golangci/plugin-module-register/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/gnolang/scopelint/gclplugin"
)

func TestSettings(t *testing.T) {
	t.Parallel()

	yes := true
	tests := []struct {
		name     string
		settings Settings
		want     int
	}{
		{"none", Settings{}, 0},
		{"disable", Settings{Disable: []string{"NestedBlocks"}}, 1},
		{"all", Settings{Disable: []string{"NestedBlocks"}, Strict: &yes}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Len(t, tc.settings.Options(), tc.want)
		})
	}
}

func TestPlugin(t *testing.T) {
	t.Parallel()

	p, err := New(map[string]any{
		"disable": []any{"NestedBlocks"},
		"strict":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, register.LoadModeSyntax, p.GetLoadMode())

	analyzers, err := p.BuildAnalyzers()
	require.NoError(t, err)
	require.Len(t, analyzers, 1)
	assert.Equal(t, "scopelint", analyzers[0].Name)
}

func TestPluginRejectsBadSettings(t *testing.T) {
	t.Parallel()

	_, err := New(map[string]any{"disable": 3})
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	t.Parallel()

	newPlugin, err := register.GetPlugin("scopelint")
	require.NoError(t, err)
	_, err = newPlugin(nil)
	assert.NoError(t, err)
}
