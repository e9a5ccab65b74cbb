package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	authdomain "storefront/backend/internal/domain/auth"
	productdomain "storefront/backend/internal/domain/product"
	authusecase "storefront/backend/internal/usecase/auth"
	productusecase "storefront/backend/internal/usecase/product"
)

func (s *Server) registerRoutes() {
	s.router.Handle("/", http.HandlerFunc(s.handleRoot))
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/metrics", http.HandlerFunc(s.handleMetrics))

	s.router.Handle("/auth/register", http.HandlerFunc(s.handleRegister))
	s.router.Handle("/auth/login", http.HandlerFunc(s.handleLogin))
	s.router.Handle("/auth/forgot-password", http.HandlerFunc(s.handleForgotPassword))
	s.router.Handle("/auth/reset-password", http.HandlerFunc(s.handleResetPassword))

	s.router.Handle("/products", http.HandlerFunc(s.handleProducts))
	s.router.Handle("/products/", http.HandlerFunc(s.handleProductByID))

	adminOnly := s.requireRole(authdomain.RoleAdmin)
	s.router.Handle("/admin/users", adminOnly(http.HandlerFunc(s.handleAdminUsers)))
	s.router.Handle("/admin/users/", adminOnly(http.HandlerFunc(s.handleAdminUserByID)))
	s.router.Handle("/admin/products", adminOnly(http.HandlerFunc(s.handleAdminProducts)))
	s.router.Handle("/admin/products/", adminOnly(http.HandlerFunc(s.handleAdminProductByID)))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "storefront API is running",
		"health":  "/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := s.authService.Register(r.Context(), authusecase.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrEmailExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, authdomain.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	token, user, err := s.authService.Login(r.Context(), authdomain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      user.ID,
		"email":        user.Email,
		"role":         user.Role,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "email required")
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
		}
		return
	}

	token, err := s.authService.ForgotPassword(r.Context(), payload.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not process reset request")
		return
	}

	// Uniform response regardless of whether the account exists. The token
	// itself travels out-of-band; it appears in the body only in dev mode.
	response := map[string]any{
		"message": "if the email exists, a reset token has been sent",
	}
	if s.exposeResetToken && token != "" {
		response["reset_token"] = token
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "token and new_password required")
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
		}
		return
	}

	if err := s.authService.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		switch {
		case errors.Is(err, authdomain.ErrTokenInvalid):
			writeError(w, http.StatusBadRequest, "invalid or expired reset token")
		case errors.Is(err, authdomain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeMessage(w, http.StatusOK, "password successfully reset")
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		items, err := s.productService.List(ctx, listInputFromQuery(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		claims, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		if !s.authorize(w, claims, authdomain.RoleSeller, authdomain.RoleAdmin) {
			return
		}

		var payload productusecase.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		item, err := s.productService.Create(ctx, actorFromClaims(claims), payload)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, item)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(strings.TrimPrefix(r.URL.Path, "/products/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		item, err := s.productService.Get(ctx, id)
		if err != nil {
			if errors.Is(err, productdomain.ErrNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPut, http.MethodPatch:
		claims, ok := s.authenticate(w, r)
		if !ok {
			return
		}

		var payload productusecase.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		item, err := s.productService.Update(ctx, actorFromClaims(claims), id, payload)
		if err != nil {
			switch {
			case errors.Is(err, productdomain.ErrNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, productdomain.ErrNotOwner):
				writeError(w, http.StatusForbidden, err.Error())
			default:
				writeError(w, http.StatusBadRequest, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		claims, ok := s.authenticate(w, r)
		if !ok {
			return
		}

		if err := s.productService.Deactivate(ctx, actorFromClaims(claims), id); err != nil {
			switch {
			case errors.Is(err, productdomain.ErrNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			case errors.Is(err, productdomain.ErrNotOwner):
				writeError(w, http.StatusForbidden, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	users, err := s.userService.List(r.Context(), intQuery(r, "offset", 0), intQuery(r, "limit", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request) {
	remainder := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/users/"), "/")
	if remainder == "" {
		writeError(w, http.StatusBadRequest, "user id required")
		return
	}

	segments := strings.Split(remainder, "/")
	id, err := parseID(segments[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if len(segments) > 1 {
		switch segments[1] {
		case "activate":
			s.handleAdminUserActivation(w, r, id, true)
		case "deactivate":
			s.handleAdminUserActivation(w, r, id, false)
		default:
			writeError(w, http.StatusNotFound, "resource not found")
		}
		return
	}

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	user, err := s.userService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAdminUserActivation(w http.ResponseWriter, r *http.Request, id int64, activate bool) {
	if r.Method != http.MethodPut {
		writeMethodNotAllowed(w, http.MethodPut)
		return
	}

	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var user *authdomain.User
	var err error
	if activate {
		user, err = s.userService.Activate(r.Context(), id)
	} else {
		user, err = s.userService.Deactivate(r.Context(), claims.UserID, id)
	}
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, authdomain.ErrSelfDeactivation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	verb := "deactivated"
	if activate {
		verb = "activated"
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("user %s has been %s", user.Email, verb))
}

func (s *Server) handleAdminProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))
	items, err := s.productService.ListAll(r.Context(), listInputFromQuery(r), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAdminProductByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w, http.MethodDelete)
		return
	}

	id, err := parseID(strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/products/"), "/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := s.productService.HardDelete(r.Context(), id); err != nil {
		if errors.Is(err, productdomain.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeMessage(w, http.StatusOK, "product has been permanently deleted")
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func listInputFromQuery(r *http.Request) productusecase.ListInput {
	return productusecase.ListInput{
		Search: r.URL.Query().Get("search"),
		Offset: intQuery(r, "offset", 0),
		Limit:  intQuery(r, "limit", 0),
	}
}
