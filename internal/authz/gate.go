// Package authz decides which screens a browser context may see.
package authz

import "pos_terminal/internal/models"

const (
	LoginPath   = "/login"
	CashierHome = "/cashier"
	AdminHome   = "/admin"
)

type Outcome int

const (
	Render Outcome = iota
	RedirectToLogin
	RedirectToHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect to login"
	case RedirectToHome:
		return "redirect to home"
	default:
		return "unknown"
	}
}

type Decision struct {
	Outcome  Outcome
	Location string
}

func Home(role models.Role) string {
	if role == models.RoleAdmin {
		return AdminHome
	}
	return CashierHome
}

// Decide gates a screen that requires the given role.
func Decide(sess *models.Session, required models.Role) Decision {
	if sess == nil {
		return Decision{Outcome: RedirectToLogin, Location: LoginPath}
	}
	if sess.Position != required {
		return Decision{Outcome: RedirectToHome, Location: Home(sess.Position)}
	}
	return Decision{Outcome: Render}
}

// DecideLogin gates the login screen itself: an existing session is sent to
// its home instead of seeing the form again.
func DecideLogin(sess *models.Session) Decision {
	if sess == nil {
		return Decision{Outcome: Render}
	}
	return Decision{Outcome: RedirectToHome, Location: Home(sess.Position)}
}
