package fiber_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/logger"
	adapter "github.com/corpsite/corpsite/internal/logger/adapter/fiber"
)

type accessLine struct {
	IP     string `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	Error  string `json:"error"`
}

var consoleAccess = logger.Log{ //nolint:gochecknoglobals
	AccessLogToConsole: true,
	Console:            logger.Console{Enabled: true},
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config adapter.Config
		target string
		want   *accessLine
	}{
		{
			name:   "no writers no output",
			target: "/",
		},
		{
			name:   "root",
			config: adapter.Config{Log: consoleAccess},
			target: "/",
			want:   &accessLine{Status: fiber.StatusOK, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:   "query string kept",
			config: adapter.Config{Log: consoleAccess},
			target: "/tenders?q=boiler&page=2",
			want:   &accessLine{Status: fiber.StatusOK, URI: "/tenders?q=boiler&page=2", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:   "double slash logged unnormalized",
			config: adapter.Config{Log: consoleAccess},
			target: "//missing",
			want: &accessLine{
				Status: fiber.StatusNotFound, URI: "//missing", Method: fiber.MethodGet,
				Host: "example.com", Error: "Cannot GET //missing",
			},
		},
		{
			name:   "handler error rendered and logged",
			config: adapter.Config{Log: consoleAccess},
			target: "/broken",
			want: &accessLine{
				Status: fiber.StatusInternalServerError, URI: "/broken", Method: fiber.MethodGet,
				Host: "example.com", Error: "broken handler",
			},
		},
		{
			name: "checkalive skipped",
			config: adapter.Config{Log: logger.Log{
				AccessLogToConsole: true,
				SkipCheckAlive:     true,
				Console:            logger.Console{Enabled: true},
			}},
			target: "/checkalive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, resp := serve(t, tt.target, tt.config)
			assert.NotEmpty(t, resp.Header.Get(adapter.HeaderPerformance))

			if tt.want == nil {
				assert.Empty(t, output)
				return
			}

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(output), &got), output)

			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Error, got.Error)
		})
	}
}

func serve(t *testing.T, target string, cfg adapter.Config) (string, *http.Response) {
	t.Helper()

	stdout, stderr := os.Stdout, os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = w, w

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use(adapter.New(cfg))

	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/", ok)
	app.Get("/tenders", ok)
	app.Get("/checkalive", ok)
	app.Get("/broken", func(*fiber.Ctx) error { return errors.New("broken handler") })

	resp, testErr := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil), -1)

	_ = w.Close()
	os.Stdout, os.Stderr = stdout, stderr
	out := <-outC

	require.NoError(t, testErr)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return out, resp
}
