package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider struct{ name string }

func (p namedProvider) Name() string { return p.name }

func (p namedProvider) Translate(ctx context.Context, req Request) (*Response, error) {
	return &Response{Text: req.Text, ProviderName: p.name}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("")
	assert.Equal(t, "google", r.DefaultProvider())

	_, err := r.Provider("")
	require.Error(t, err)

	require.NoError(t, r.Register(namedProvider{name: "Google"}))
	require.NoError(t, r.Register(namedProvider{name: "gemini"}))
	require.Error(t, r.Register(nil))
	require.Error(t, r.Register(namedProvider{name: " "}))

	p, err := r.Provider("")
	require.NoError(t, err)
	assert.Equal(t, "Google", p.Name())

	p, err = r.Provider(" GEMINI ")
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	_, err = r.Provider("deepl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini, google")
	assert.Equal(t, []string{"gemini", "google"}, r.ProviderNames())
}
