package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Route is one entry of the declarative route table.
type Route struct {
	Method    string
	Path      string
	Handler   fiber.Handler
	Protected bool            // requires a live session
	Extra     []fiber.Handler // middleware run before Handler, after authentication
}

// Routes returns the API route table. Paths are relative to the /api group.
func Routes(auth *AuthHandler, reminders *ReminderHandler, authLimiter fiber.Handler) []Route {
	return []Route{
		{Method: fiber.MethodPost, Path: "/register", Handler: auth.HandleRegister, Extra: []fiber.Handler{authLimiter}},
		{Method: fiber.MethodPost, Path: "/login", Handler: auth.HandleLogin, Extra: []fiber.Handler{authLimiter}},
		{Method: fiber.MethodPost, Path: "/logout", Handler: auth.HandleLogout},

		{Method: fiber.MethodGet, Path: "/reminders", Handler: reminders.HandleList, Protected: true},
		{Method: fiber.MethodGet, Path: "/reminders/today", Handler: reminders.HandleListToday, Protected: true},
		{Method: fiber.MethodPost, Path: "/reminders", Handler: reminders.HandleCreate, Protected: true},
		{Method: fiber.MethodPut, Path: "/reminders/:id", Handler: reminders.HandleUpdate, Protected: true},
		{Method: fiber.MethodDelete, Path: "/reminders/:id", Handler: reminders.HandleDelete, Protected: true},
		{Method: fiber.MethodPost, Path: "/reminders/:id/taken", Handler: reminders.HandleMarkTaken, Protected: true},
	}
}

// Mount registers every route on router, guarding protected ones with requireSession.
func Mount(router fiber.Router, routes []Route, requireSession fiber.Handler) {
	for _, rt := range routes {
		chain := make([]fiber.Handler, 0, len(rt.Extra)+2)
		if rt.Protected {
			chain = append(chain, requireSession)
		}
		for _, h := range rt.Extra {
			if h != nil {
				chain = append(chain, h)
			}
		}
		chain = append(chain, rt.Handler)
		router.Add(rt.Method, rt.Path, chain...)
	}
}
