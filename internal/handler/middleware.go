package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"

	"pos_terminal/internal/authz"
	"pos_terminal/internal/models"
	"pos_terminal/internal/workspace"
)

// CookieName identifies the browser context a request belongs to.
const CookieName = "pos_terminal"

type workspaceKey struct{}

// WithWorkspace attaches the caller's workspace to the request context,
// issuing a new context id when the cookie is missing or malformed.
func WithWorkspace(registry *workspace.Registry, logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID := ""
		if cookie, err := r.Cookie(CookieName); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				contextID = cookie.Value
			}
		}
		if contextID == "" {
			contextID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    contextID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			logger.Printf("New browser context %s", contextID)
		}

		ws := registry.Get(r.Context(), contextID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), workspaceKey{}, ws)))
	})
}

func workspaceFrom(r *http.Request) *workspace.Workspace {
	ws, _ := r.Context().Value(workspaceKey{}).(*workspace.Workspace)
	return ws
}

// RequireRole lets the request through only for a session holding role.
// Page loads are redirected; API calls get 401 or 403 with the redirect
// target in the body.
func RequireRole(role models.Role, logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := authz.Decide(workspaceFrom(r).Current(), role)
		if decision.Outcome == authz.Render {
			next.ServeHTTP(w, r)
			return
		}
		deny(w, r, logger, decision)
	})
}

func deny(w http.ResponseWriter, r *http.Request, logger *log.Logger, decision authz.Decision) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		http.Redirect(w, r, decision.Location, http.StatusFound)
		return
	}

	statusCode := http.StatusForbidden
	message := "Not permitted for this role"
	if decision.Outcome == authz.RedirectToLogin {
		statusCode = http.StatusUnauthorized
		message = "Login required"
	}
	writeJSON(w, logger, statusCode, ResponsePayload{
		Status:   statusFailed,
		Message:  message,
		Redirect: decision.Location,
	})
}
