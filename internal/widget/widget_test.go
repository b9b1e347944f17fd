package widget

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/avsearch/internal/domain"
	"github.com/John-Robertt/avsearch/internal/provider"
)

type stubProvider struct {
	name string
	got  []domain.Params
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, params domain.Params) ([]domain.MovieEntry, error) {
	p.got = append(p.got, params)
	return []domain.MovieEntry{{ID: "/v/1"}}, nil
}

func TestJavDBMetadata_JSON(t *testing.T) {
	b, err := json.Marshal(JavDB("https://javdb.com"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "javdb_search_enhanced", m["id"])
	assert.Equal(t, "1.0.0", m["version"])
	assert.Equal(t, "0.0.1", m["requiredVersion"])
	assert.Equal(t, "https://javdb.com", m["site"])

	mods := m["modules"].([]any)
	require.Len(t, mods, 1)
	mod := mods[0].(map[string]any)
	assert.Equal(t, "searchJavDB", mod["functionName"])
	assert.Equal(t, false, mod["requiresWebView"])
	assert.Equal(t, false, mod["sectionMode"])
	assert.Equal(t, float64(300), mod["cacheDuration"])
	assert.NotContains(t, mod, "Provider", "provider name 不应暴露给宿主")

	params := mod["params"].([]any)
	require.Len(t, params, 1)
	p := params[0].(map[string]any)
	assert.Equal(t, "code", p["name"])
	assert.Equal(t, "input", p["type"])
	assert.Len(t, p["placeholders"], 2)
}

func TestWidget_Call(t *testing.T) {
	sp := &stubProvider{name: "javdb"}
	reg, err := provider.NewRegistry(sp)
	require.NoError(t, err)

	w, err := New(JavDB("https://javdb.com"), reg)
	require.NoError(t, err)

	entries, err := w.Call(context.Background(), FuncSearchJavDB, domain.Params{Code: "DLDSS-408"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, []domain.Params{{Code: "DLDSS-408"}}, sp.got)

	_, err = w.Call(context.Background(), "nope", domain.Params{})
	assert.True(t, errors.Is(err, ErrUnknownFunction))
}

func TestNew_RequiresRegisteredProvider(t *testing.T) {
	reg, err := provider.NewRegistry(&stubProvider{name: "other"})
	require.NoError(t, err)

	_, err = New(JavDB(""), reg)
	assert.Error(t, err)
}
