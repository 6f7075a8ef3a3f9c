// Package session keeps admin logins and visitor tokens in fiber sessions.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/corpsite/corpsite/internal/uniuri"
)

// CookieName is the session cookie.
const CookieName = "session"

const dataKey = "data"

// ErrNotInitialized is returned when Init was not called.
var ErrNotInitialized = errors.New("session store is not initialized")

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// User is the logged in back-office account.
type User struct {
	ID       uint64
	Username string
	Name     string
	RoleID   uint64
}

// Data is everything kept per session.
type Data struct {
	User User
	// Visitor identifies an anonymous visitor's open document request.
	Visitor string
}

// LoggedIn reports whether the session belongs to an admin user.
func (d *Data) LoggedIn() bool {
	return d.User.ID > 0
}

// Config of the session store.
type Config struct {
	Storage fiber.Storage // nil keeps sessions in memory
	Expiry  time.Duration
	Secure  bool
}

// Init initializes the session store.
func Init(cfg Config) {
	Store = session.New(session.Config{
		Storage:        cfg.Storage,
		Expiration:     cfg.Expiry,
		KeyLookup:      "cookie:" + CookieName,
		CookieSecure:   cfg.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		KeyGenerator:   uniuri.NewToken,
	})
}

// Read returns the session data of the request. A visitor without a session
// gets empty data.
func Read(c *fiber.Ctx) (*Data, error) {
	_, data, err := load(c)
	return data, err
}

// Login starts a fresh session for user, keeping the visitor token.
func Login(c *fiber.Ctx, user User) error {
	sess, data, err := load(c)
	if err != nil {
		return err
	}

	if err = sess.Regenerate(); err != nil {
		return err //nolint:wrapcheck
	}

	data.User = user

	return save(sess, data)
}

// Logout destroys the session.
func Logout(c *fiber.Ctx) error {
	if Store == nil {
		return ErrNotInitialized
	}

	sess, err := Store.Get(c)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sess.Destroy() //nolint:wrapcheck
}

// Visitor returns the visitor token of the request, creating and persisting
// one on first use.
func Visitor(c *fiber.Ctx) (string, error) {
	sess, data, err := load(c)
	if err != nil {
		return "", err
	}

	if data.Visitor != "" {
		return data.Visitor, nil
	}

	data.Visitor = uniuri.NewToken()

	if err = save(sess, data); err != nil {
		return "", err
	}

	return data.Visitor, nil
}

func load(c *fiber.Ctx) (*session.Session, *Data, error) {
	if Store == nil {
		return nil, nil, ErrNotInitialized
	}

	sess, err := Store.Get(c)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	data := new(Data)

	if raw, ok := sess.Get(dataKey).(string); ok && raw != "" {
		if err = json.Unmarshal([]byte(raw), data); err != nil {
			return nil, nil, err //nolint:wrapcheck
		}
	}

	return sess, data, nil
}

func save(sess *session.Session, data *Data) error {
	out, err := json.Marshal(data)
	if err != nil {
		return err //nolint:wrapcheck
	}

	sess.Set(dataKey, string(out))

	return sess.Save() //nolint:wrapcheck
}
