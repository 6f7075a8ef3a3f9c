package logout

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpsite/corpsite/internal/web/handler/handlertest"
	"github.com/corpsite/corpsite/internal/web/handler/login"
	"github.com/corpsite/corpsite/internal/web/session"
)

func TestLogout(t *testing.T) {
	handlertest.InitSession()

	app := handlertest.NewApp()
	app.Get("/as-admin", func(c *fiber.Ctx) error {
		return session.Login(c, session.User{ID: 1, Username: "admin"})
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		data, err := session.Read(c)
		if err != nil {
			return err
		}

		return c.SendString(data.User.Username)
	})

	var s Service
	s.Init(app, handlertest.NewConfig())

	cookie := handlertest.SessionCookie(handlertest.Do(t, app, http.MethodGet, "/as-admin", nil, ""), "")
	require.NotEmpty(t, cookie)
	assert.Equal(t, "admin", handlertest.Do(t, app, http.MethodGet, "/whoami", nil, cookie).Body)

	resp := handlertest.Do(t, app, http.MethodPost, Path, nil, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, login.Path, resp.Header.Get("Location"))

	assert.Empty(t, handlertest.Do(t, app, http.MethodGet, "/whoami", nil, cookie).Body)
}
