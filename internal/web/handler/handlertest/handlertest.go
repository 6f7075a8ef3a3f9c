// Package handlertest holds the fixtures shared by the handler tests: a view
// engine that skips templates, a memory session storage and an in-memory
// database.
package handlertest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/corpsite/corpsite/internal/config"
	"github.com/corpsite/corpsite/internal/db/models"
	"github.com/corpsite/corpsite/internal/web/session"
)

// Views is a minimal Fiber Views engine.
// It writes the "error" or "Error" field from the provided fiber.Map (if any)
// so tests can assert error messages rendered by handlers, and the
// template name otherwise.
type Views struct{}

// Load implements fiber.Views.
func (Views) Load() error { return nil }

// Render implements fiber.Views.
func (Views) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if m, ok := data.(fiber.Map); ok {
		for _, key := range []string{"error", "Error"} {
			if v, ok := m[key].(string); ok && v != "" {
				_, _ = io.WriteString(w, v)
				return nil
			}
		}
	}

	_, _ = io.WriteString(w, name)

	return nil
}

// NewApp returns a fiber app rendering with Views.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{Views: Views{}})
}

// NewDB opens a migrated in-memory sqlite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	// each sqlite connection would open its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

// NewConfig returns a config with defaults suitable for handler tests.
func NewConfig() *config.Config {
	return &config.Config{
		Title: "Corpsite",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Download: config.Download{
			DownloadDelay: time.Second,
			DisplayWindow: 5 * time.Second,
			PageSize:      5,
			SlotTTL:       time.Minute,
		},
	}
}

// Storage is a minimal in-memory fiber.Storage.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ fiber.Storage = (*Storage)(nil)

// Get implements fiber.Storage.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set implements fiber.Storage.
func (s *Storage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

// Delete implements fiber.Storage.
func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Reset implements fiber.Storage.
func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

// Close implements fiber.Storage.
func (s *Storage) Close() error { return nil }

// InitSession initializes a fresh session store backed by Storage.
func InitSession() {
	session.Init(session.Config{Storage: &Storage{data: make(map[string][]byte)}, Expiry: time.Minute})
}

// Response is a finished test request with its body read.
type Response struct {
	*http.Response
	Body string
}

// Do sends a request to app. form, when set, is posted url-encoded; cookie,
// when set, is sent as the Cookie header.
func Do(t *testing.T, app *fiber.App, method, target string, form url.Values, cookie string) Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return Response{Response: resp, Body: string(raw)}
}

// SessionCookie returns the "name=value" pair of the session cookie set by
// resp, or fallback when none was set.
func SessionCookie(resp Response, fallback string) string {
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c.Name + "=" + c.Value
		}
	}

	return fallback
}
