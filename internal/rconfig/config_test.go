package rconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.ryu.dev/ryu/internal/jj/jjtest"
	"go.ryu.dev/ryu/internal/rconfig"
)

func TestLoad(t *testing.T) {
	cl := jjtest.New()
	cl.Config = map[string]string{
		"ryu.remote":        "upstream",
		"ryu.draft":         "true",
		"user.name":         "ignored",
		"ryuish.unrelated":  "ignored",
	}

	cfg, err := rconfig.Load(t.Context(), cl)
	require.NoError(t, err)

	remote, ok := cfg.Get("remote")
	assert.True(t, ok)
	assert.Equal(t, "upstream", remote)

	_, ok = cfg.Get("unrelated")
	assert.False(t, ok, "keys outside the ryu. namespace must not leak in")

	assert.Equal(t, []string{"draft", "remote"}, cfg.Keys())
}

func TestLoad_empty(t *testing.T) {
	cfg, err := rconfig.Load(t.Context(), jjtest.New())
	require.NoError(t, err)

	_, ok := cfg.Get("remote")
	assert.False(t, ok)
}
