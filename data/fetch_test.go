package data

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testServer serves plain CSV files and 404s the compressed variants, so the
// fetcher walks its fallback chain.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/spy/options.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testOptions))
	})
	mux.HandleFunc("/spy/underlying.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testUnderlying))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDatasetProviderFetchesOnMiss(t *testing.T) {
	srv := testServer(t)
	cache := t.TempDir()

	p := NewDatasetProvider(srv.URL, cache, zerolog.Nop())

	px, err := p.GetPrice("SPY", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 470.0, px, 1e-9)

	// Files are materialized in the cache.
	_, err = os.Stat(filepath.Join(cache, "SPY", optionsFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cache, "SPY", underlyingFile))
	assert.NoError(t, err)
}

func TestDatasetProviderCacheIsWarmSecondTime(t *testing.T) {
	srv := testServer(t)
	cache := t.TempDir()

	p := NewDatasetProvider(srv.URL, cache, zerolog.Nop())
	_, err := p.GetPrice("SPY", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Kill the server; a fresh provider over the same cache dir must not
	// need the network again.
	srv.Close()

	p2 := NewDatasetProvider(srv.URL, cache, zerolog.Nop())
	px, err := p2.GetPrice("SPY", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 466.5, px, 1e-9)
}

func TestDatasetProviderUnknownTicker(t *testing.T) {
	srv := testServer(t)
	p := NewDatasetProvider(srv.URL, t.TempDir(), zerolog.Nop())

	_, err := p.GetPrice("NOPE", time.Now())
	assert.ErrorIs(t, err, ErrUnknownTicker)
}
