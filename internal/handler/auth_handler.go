package handler

import (
	"errors"
	"log"
	"net/http"

	"pos_terminal/internal/authz"
	"pos_terminal/internal/models"
	"pos_terminal/internal/session"
)

const loginFailed = "Login failed"

type AuthHandler struct {
	logger *log.Logger
}

func NewAuthHandler(logger *log.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

type LoginScreenPayload struct {
	Screen string `json:"screen"`
}

type SessionPayload struct {
	EmployeeID string      `json:"employeeId"`
	Username   string      `json:"username"`
	FullName   string      `json:"fullName"`
	Position   models.Role `json:"position"`
}

func sessionPayload(sess *models.Session) *SessionPayload {
	if sess == nil {
		return nil
	}
	return &SessionPayload{
		EmployeeID: sess.EmployeeID,
		Username:   sess.Username,
		FullName:   sess.FullName,
		Position:   sess.Position,
	}
}

func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, authz.LoginPath, http.StatusFound)
}

func (h *AuthHandler) LoginScreen(w http.ResponseWriter, r *http.Request) {
	decision := authz.DecideLogin(workspaceFrom(r).Current())
	if decision.Outcome != authz.Render {
		http.Redirect(w, r, decision.Location, http.StatusFound)
		return
	}
	writeSuccess(w, h.logger, "", LoginScreenPayload{Screen: "login"})
}

// Login authenticates a context with no session. A context that is already
// logged in is pointed at its home instead of being re-authenticated.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if decision := authz.DecideLogin(ws.Current()); decision.Outcome != authz.Render {
		writeJSON(w, h.logger, http.StatusConflict, ResponsePayload{
			Status:   statusFailed,
			Message:  "Already logged in",
			Redirect: decision.Location,
		})
		return
	}

	var req models.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: loginFailed})
		return
	}

	sess, err := ws.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Printf("Login for %q failed: %v", req.Username, err)
		statusCode := http.StatusInternalServerError
		if errors.Is(err, session.ErrLoginFailed) {
			statusCode = http.StatusUnauthorized
		}
		writeJSON(w, h.logger, statusCode, ResponsePayload{Status: statusFailed, Message: loginFailed})
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ResponsePayload{
		Status:   statusSuccess,
		Redirect: authz.Home(sess.Position),
		Data:     sessionPayload(sess),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if err := ws.Logout(r.Context()); err != nil {
		h.logger.Printf("Warning: logout for %s left persisted state behind: %v", ws.ID, err)
	}
	writeJSON(w, h.logger, http.StatusOK, ResponsePayload{Status: statusSuccess, Redirect: authz.LoginPath})
}

type DashboardPayload struct {
	Screen    string          `json:"screen"`
	User      *SessionPayload `json:"user"`
	ItemCount int             `json:"itemCount"`
}

// Dashboard serves a role's landing screen. Opening it reloads the catalog.
func (h *AuthHandler) Dashboard(screen string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r)
		ws.Catalog.Refresh(r.Context())
		writeSuccess(w, h.logger, "", DashboardPayload{
			Screen:    screen,
			User:      sessionPayload(ws.Current()),
			ItemCount: len(ws.Catalog.Items()),
		})
	}
}
