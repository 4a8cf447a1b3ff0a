package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/config"
	"github.com/noah-isme/stagehub-api/internal/handler"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/models"
)

// headerAuth binds a principal from test headers and rejects requests without one.
func headerAuth(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64)
	if err != nil || id == 0 {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	middleware.SetPrincipal(c, models.Principal{UserID: uint(id), Role: models.ParseRole(c.Get("X-Test-Role"))})
	return c.Next()
}

func newRouterApp(probes map[string]handler.HealthProbe) *fiber.App {
	app := fiber.New()
	Register(app, config.Config{AppName: "stagehub-test", AppEnv: "test"}, Dependencies{
		AdminHandler:  handler.NewAdminHandler(nil, zerolog.Nop()),
		HealthProbes:  probes,
		JWTMiddleware: headerAuth,
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRegisterHealthIsPublic(t *testing.T) {
	app := newRouterApp(map[string]handler.HealthProbe{
		"database": func(context.Context) error { return nil },
	})

	resp := send(t, app, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "stagehub-test", resp.Header.Get("X-Application"))
}

func TestRegisterHealthReportsDegradedDependency(t *testing.T) {
	app := newRouterApp(map[string]handler.HealthProbe{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	resp := send(t, app, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRegisterProtectsAPIRoutes(t *testing.T) {
	app := newRouterApp(nil)

	resp := send(t, app, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterAdminGroupRequiresAdminRole(t *testing.T) {
	app := newRouterApp(nil)

	resp := send(t, app, http.MethodGet, "/api/admin/stats", map[string]string{
		"X-Test-User": "10",
		"X-Test-Role": "student",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterServesMetrics(t *testing.T) {
	app := newRouterApp(nil)

	resp := send(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
