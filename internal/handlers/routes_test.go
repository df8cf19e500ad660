package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medreminder/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(services.KindValidation))
	assert.Equal(t, http.StatusUnauthorized, statusFor(services.KindAuth))
	assert.Equal(t, http.StatusForbidden, statusFor(services.KindForbidden))
	assert.Equal(t, http.StatusNotFound, statusFor(services.KindNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(services.KindInternal))
}

func TestWriteServiceError(t *testing.T) {
	log, hook := test.NewNullLogger()
	app := fiber.New()
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return writeServiceError(c, log, &services.Error{Kind: services.KindForbidden, Message: "Unauthorized to update this reminder"})
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return writeServiceError(c, log, &services.Error{Kind: services.KindInternal, Message: "Error creating reminder", Err: errors.New("disk full")})
	})
	app.Get("/unknown", func(c *fiber.Ctx) error {
		return writeServiceError(c, log, errors.New("raw driver error"))
	})

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/forbidden", http.StatusForbidden, "Unauthorized to update this reminder"},
		{"/internal", http.StatusInternalServerError, "Error creating reminder: disk full"},
		{"/unknown", http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
		assert.Equal(t, tt.message, body["error"], tt.path)
	}
	assert.Len(t, hook.AllEntries(), 2, "only internal errors are logged")
}

func TestMount(t *testing.T) {
	var calls []string
	step := func(name string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			calls = append(calls, name)
			return c.Next()
		}
	}
	final := func(c *fiber.Ctx) error {
		calls = append(calls, "handler")
		return c.SendStatus(fiber.StatusOK)
	}

	app := fiber.New()
	Mount(app.Group("/api"), []Route{
		{Method: fiber.MethodGet, Path: "/open", Handler: final, Extra: []fiber.Handler{nil, step("extra")}},
		{Method: fiber.MethodGet, Path: "/closed", Handler: final, Protected: true, Extra: []fiber.Handler{step("extra")}},
	}, step("session"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/open", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []string{"extra", "handler"}, calls)

	calls = nil
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/closed", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []string{"session", "extra", "handler"}, calls)
}

func TestRoutesProtection(t *testing.T) {
	routes := Routes(&AuthHandler{}, &ReminderHandler{}, nil)
	require.Len(t, routes, 9)
	for _, rt := range routes {
		public := rt.Path == "/register" || rt.Path == "/login" || rt.Path == "/logout"
		assert.Equal(t, !public, rt.Protected, "%s %s", rt.Method, rt.Path)
	}
}
