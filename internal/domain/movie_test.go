package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery_TrimAndUpper(t *testing.T) {
	q, err := ParseQuery("  dldss-408 \t")
	require.NoError(t, err)
	assert.Equal(t, Query("DLDSS-408"), q)

	q, err = ParseQuery("楪カレン")
	require.NoError(t, err)
	assert.Equal(t, Query("楪カレン"), q)
}

func TestParseQuery_Blank(t *testing.T) {
	for _, in := range []string{"", " ", "\t\n", "　"} {
		_, err := ParseQuery(in)
		var ie *InvalidInputError
		require.Truef(t, errors.As(err, &ie), "期望 InvalidInputError，输入=%q err=%v", in, err)
		assert.Equal(t, "code", ie.Field)
	}
}

func TestNewMovieEntry_Defaults(t *testing.T) {
	e := NewMovieEntry(SearchResultItem{Href: "/v/x"}, "https://javdb.com/v/x", MovieDetail{})

	assert.Equal(t, "/v/x", e.ID)
	assert.Equal(t, EntryTypeURL, e.Type)
	assert.Equal(t, MediaTypeMovie, e.MediaType)
	assert.Equal(t, "未知标题 - 00:00", e.Title)
	assert.Equal(t, DefaultDuration, e.DurationText)
}

func TestMovieEntry_JSONFieldNames(t *testing.T) {
	e := NewMovieEntry(
		SearchResultItem{Href: "/v/x", Title: "DLDSS-408 t", Cover: "https://c/x.jpg"},
		"https://javdb.com/v/x",
		MovieDetail{VideoURL: "https://e/v", PreviewVideo: "https://p/v.mp4", Duration: "120 分鍾", Description: "d"},
	)
	b, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, map[string]string{
		"id":           "/v/x",
		"type":         "url",
		"title":        "DLDSS-408 t - 120 分鍾",
		"backdropPath": "https://c/x.jpg",
		"previewUrl":   "https://p/v.mp4",
		"link":         "https://javdb.com/v/x",
		"mediaType":    "movie",
		"durationText": "120 分鍾",
		"description":  "d",
		"videoUrl":     "https://e/v",
	}, m)
}
