package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080"})
	require.NoError(t, err)

	tr, ok := c.Transport.(*Transport)
	require.Truef(t, ok, "期望 *Transport，实际 %T", c.Transport)
	assert.NotNil(t, tr.Base.Proxy, "期望启用代理")
	assert.True(t, tr.Base.DisableKeepAlives)
	assert.True(t, tr.DisableKeepAlives)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Options{})
	require.NoError(t, err)

	tr := c.Transport.(*Transport)
	assert.Nil(t, tr.Base.Proxy)
	assert.False(t, tr.Base.DisableKeepAlives)
	assert.Nil(t, tr.Limiter, "RatePerSecond=0 时不应限速")
	assert.Equal(t, DefaultTimeout, c.Timeout)
}

func TestNewClient_RateLimiterAndTimeout(t *testing.T) {
	c, err := NewClient(Options{RatePerSecond: 2, Timeout: 3 * time.Second})
	require.NoError(t, err)

	tr := c.Transport.(*Transport)
	require.NotNil(t, tr.Limiter)
	assert.Equal(t, 1, tr.Limiter.Burst())
	assert.Equal(t, 3*time.Second, c.Timeout)
}

func TestNewClient_InvalidProxyURL(t *testing.T) {
	_, err := NewClient(Options{ProxyURL: "http://[::1"})
	assert.Error(t, err)
}

func TestFetch_DefaultHeadersAndCallerOverride(t *testing.T) {
	var gotUA, gotLang, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		gotReferer = r.Header.Get("Referer")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	hc, err := NewClient(Options{})
	require.NoError(t, err)
	c := Client{HTTP: hc}

	h := http.Header{}
	h.Set("Referer", "https://javdb.com/v/x")
	resp, err := c.Fetch(context.Background(), srv.URL, h)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, DefaultAcceptLanguage, gotLang)
	assert.Equal(t, "https://javdb.com/v/x", gotReferer)

	h.Set("User-Agent", "custom")
	_, err = c.Fetch(context.Background(), srv.URL, h)
	require.NoError(t, err)
	assert.Equal(t, "custom", gotUA)
}

func TestFetch_NonOKIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	hc, err := NewClient(Options{})
	require.NoError(t, err)

	resp, err := Client{HTTP: hc}.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, "blocked", string(resp.Body))
}

func TestFetch_NilClient(t *testing.T) {
	_, err := Client{}.Fetch(context.Background(), "https://javdb.com", nil)
	assert.Error(t, err)
}
