package web

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/web/handler/handlertest"
	"github.com/corpsite/corpsite/internal/web/handler/login"
)

func newService(t *testing.T) *Service {
	t.Helper()

	handlertest.InitSession()

	svc, err := New(handlertest.NewConfig(), handlertest.NewDB(t))
	require.NoError(t, err)

	return svc
}

func TestNewNil(t *testing.T) {
	assert.Panics(t, func() { _, _ = New(nil, handlertest.NewDB(t)) })
	assert.Panics(t, func() { _, _ = New(handlertest.NewConfig(), nil) })
}

func TestCheckAlive(t *testing.T) {
	svc := newService(t)
	require.True(t, svc.Alive())

	resp := handlertest.Do(t, svc.App, http.MethodGet, CheckAlivePath, nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", resp.Body)

	svc.alive.Store(false)

	resp = handlertest.Do(t, svc.App, http.MethodGet, CheckAlivePath, nil, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	svc := newService(t)

	resp := handlertest.Do(t, svc.App, http.MethodGet, MetricsPath, nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, "go_goroutines")
}

func TestRoutes(t *testing.T) {
	svc := newService(t)

	t.Run("root opens the tender catalog", func(t *testing.T) {
		resp := handlertest.Do(t, svc.App, http.MethodGet, "/", nil, "")
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/tenders", resp.Header.Get("Location"))
	})

	t.Run("dashboard needs a login", func(t *testing.T) {
		resp := handlertest.Do(t, svc.App, http.MethodGet, "/dashboard", nil, "")
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, login.Path, resp.Header.Get("Location"))
	})

	t.Run("static assets are embedded", func(t *testing.T) {
		resp := handlertest.Do(t, svc.App, http.MethodGet, "/static/css/site.css", nil, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Body, ":root")

		resp = handlertest.Do(t, svc.App, http.MethodGet, "/static/documents/tenders/T-2024-001.pdf", nil, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Body, "%PDF-1.4")
	})
}
