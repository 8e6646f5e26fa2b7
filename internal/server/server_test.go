package server

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	options := DefaultOptions()

	assert.Equal(t, "auHash", options.HashKey)
	assert.Equal(t, ":8080", options.Listen)
	assert.Equal(t, time.Hour, options.CleanupInterval)
	assert.True(t, options.CleanupExpiredTokens)
	require.NoError(t, options.Validate())

	srv := newServer(options, setupDB(t))
	assert.Equal(t, DefaultTokenLifetime, srv.options.TokenLifetime)
}

func TestOptionsValidate(t *testing.T) {
	testCases := map[string]func(*Options){
		"empty listen":       func(o *Options) { o.Listen = "" },
		"hash key symbols":   func(o *Options) { o.HashKey = "au-hash" },
		"no interval":        func(o *Options) { o.CleanupInterval = 0 },
		"negative grace":     func(o *Options) { o.CleanupGracePeriod = -time.Minute },
		"no request timeout": func(o *Options) { o.RequestTimeout = 0 },
	}

	for name, op := range testCases {
		t.Run(name, func(t *testing.T) {
			options := testOptions()
			op(&options)
			assert.Error(t, options.Validate())
		})
	}

	t.Run("no interval without cleanup", func(t *testing.T) {
		options := testOptions()
		options.CleanupExpiredTokens = false
		options.CleanupInterval = 0
		assert.NoError(t, options.Validate())
	})
}

func TestServerListen(t *testing.T) {
	srv := setupServer(t)

	require.NoError(t, srv.listen())
	require.Len(t, srv.routines, 2)

	errs := make(chan error, len(srv.routines))
	for _, r := range srv.routines {
		go func(run func() error) { errs <- run() }(r.run)
	}

	resp, err := http.Get("http://" + srv.Addrs.HTTP.String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + srv.Addrs.Metrics.String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "build_info")

	for _, r := range srv.routines {
		r.stop()
	}

	for range srv.routines {
		assert.NoError(t, <-errs)
	}
}
