package httpserver

import (
	"context"
	"net/http"
	"strings"

	authdomain "storefront/backend/internal/domain/auth"
	"storefront/backend/internal/infrastructure/token"
	productusecase "storefront/backend/internal/usecase/product"
)

// TokenVerifier validates access tokens at the HTTP boundary.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*token.AccessClaims, error)
}

type ctxKeyClaims struct{}

// authenticate extracts and verifies the bearer token. Absent, malformed,
// expired, or field-incomplete tokens all answer 401; the failure modes are
// indistinguishable to the caller.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*token.AccessClaims, bool) {
	bearer := extractBearerToken(r.Header.Get("Authorization"))
	if bearer == "" {
		writeError(w, http.StatusUnauthorized, "authorization token required")
		return nil, false
	}

	claims, err := s.verifier.VerifyAccess(bearer)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}
	return claims, true
}

// authorize checks the verified identity against the route's allowed role
// set. Membership only; an admin is not implicitly a seller, so routes list
// every role they accept. A miss answers 403 naming the required roles.
func (s *Server) authorize(w http.ResponseWriter, claims *token.AccessClaims, allowed ...authdomain.Role) bool {
	for _, role := range allowed {
		if claims.Role == role {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "access denied: required role(s): "+joinRoles(allowed))
	return false
}

// requireRole composes authentication and role authorization into a
// middleware guard. Unauthenticated requests get 401, authenticated
// requests with an unlisted role get 403; the two are never conflated.
func (s *Server) requireRole(allowed ...authdomain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := s.authenticate(w, r)
			if !ok {
				return
			}
			if !s.authorize(w, claims, allowed...) {
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyClaims{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFromClaims(claims *token.AccessClaims) productusecase.Actor {
	return productusecase.Actor{
		UserID: claims.UserID,
		Role:   claims.Role,
	}
}

func claimsFromContext(ctx context.Context) (*token.AccessClaims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims{}).(*token.AccessClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func joinRoles(roles []authdomain.Role) string {
	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, string(role))
	}
	return strings.Join(parts, ", ")
}
