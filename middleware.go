package atelier

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const sessionName = "atelier_admin"

func (a *App) setupMiddleware() {
	e := a.echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			// uploads are already-compressed media
			return strings.HasPrefix(c.Request().URL.Path, "/uploads")
		},
	}))
	e.Use(middleware.Secure())

	store := sessions.NewCookieStore([]byte(a.cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(a.cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	e.Use(cacheControl)
}

// cacheControl keeps admin responses out of shared caches.
func cacheControl(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.HasPrefix(c.Request().URL.Path, "/api/admin") {
			c.Response().Header().Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

// requireAdmin admits requests carrying either a valid bearer token or an
// authenticated session cookie. Everything else gets a uniform 401.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if tok, ok := bearerToken(c); ok && a.issuer.Verify(tok) == nil {
			return next(c)
		}
		if isAdminSession(c) {
			return next(c)
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	tok, ok := strings.CutPrefix(h, "Bearer ")
	return tok, ok && tok != ""
}

func isAdminSession(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	v, _ := sess.Values["admin"].(bool)
	return v
}

func setAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["admin"] = true
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, "admin")
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
