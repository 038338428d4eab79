package api

import (
	"database/sql"
	"net/http"

	"github.com/pointmint/market/internal/market"
	"github.com/pointmint/market/internal/model"
)

// NewRouter creates the admin API router with all endpoints registered.
func NewRouter(db *sql.DB, svc *market.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{Market: svc}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items: read (all roles), write (admin only).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("POST /api/items/swap", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Swap))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Delete))))

	return mux
}
