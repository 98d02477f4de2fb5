package handler

import (
	"log"
	"net/http"

	"pos_terminal/internal/authz"
	"pos_terminal/internal/models"
	"pos_terminal/internal/workspace"
)

// NewRouter builds the terminal's route table. Every route runs inside the
// caller's workspace; role screens sit behind the authorization gate.
func NewRouter(registry *workspace.Registry, logger *log.Logger) http.Handler {
	auth := NewAuthHandler(logger)
	sales := NewSalesHandler(logger)
	rentals := NewRentalsHandler(logger)
	returns := NewReturnsHandler(logger)
	admin := NewAdminHandler(logger)

	cashier := func(h http.HandlerFunc) http.Handler { return RequireRole(models.RoleCashier, logger, h) }
	adminOnly := func(h http.HandlerFunc) http.Handler { return RequireRole(models.RoleAdmin, logger, h) }

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", auth.Index)
	mux.HandleFunc("GET "+authz.LoginPath, auth.LoginScreen)
	mux.HandleFunc("POST "+authz.LoginPath, auth.Login)
	mux.HandleFunc("POST /logout", auth.Logout)

	mux.Handle("GET "+authz.CashierHome, cashier(auth.Dashboard("cashier")))
	mux.Handle("GET /cashier/sales", cashier(sales.Screen))
	mux.Handle("POST /cashier/sales/lines", cashier(sales.AddLine))
	mux.Handle("DELETE /cashier/sales/lines/{itemId}", cashier(sales.RemoveLine))
	mux.Handle("PUT /cashier/sales/coupon", cashier(sales.SetCoupon))
	mux.Handle("POST /cashier/sales/commit", cashier(sales.Commit))

	mux.Handle("GET /cashier/rentals", cashier(rentals.Screen))
	mux.Handle("POST /cashier/rentals/lines", cashier(rentals.AddLine))
	mux.Handle("DELETE /cashier/rentals/lines/{itemId}", cashier(rentals.RemoveLine))
	mux.Handle("PUT /cashier/rentals/customer", cashier(rentals.SetCustomer))
	mux.Handle("POST /cashier/rentals/commit", cashier(rentals.Commit))

	mux.Handle("GET /cashier/returns", cashier(returns.Screen))
	mux.Handle("POST /cashier/returns/lookup", cashier(returns.Lookup))
	mux.Handle("POST /cashier/returns/selection/{rentalItemId}", cashier(returns.Toggle))
	mux.Handle("POST /cashier/returns/commit", cashier(returns.Commit))

	mux.Handle("GET "+authz.AdminHome, adminOnly(auth.Dashboard("admin")))
	mux.Handle("GET /admin/inventory", adminOnly(admin.Inventory))
	mux.Handle("PUT /admin/inventory/{id}/quantity", adminOnly(admin.SetQuantity))
	mux.Handle("GET /admin/employees", adminOnly(admin.Employees))
	mux.Handle("POST /admin/employees", adminOnly(admin.CreateEmployee))
	mux.Handle("PUT /admin/employees/{id}", adminOnly(admin.UpdateEmployee))
	mux.Handle("DELETE /admin/employees/{id}", adminOnly(admin.DeleteEmployee))
	mux.Handle("GET /admin/journal", adminOnly(admin.Journal))

	return WithWorkspace(registry, logger, mux)
}
