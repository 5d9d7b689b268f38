package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/hrdash/token/jwt"
	"github.com/jrsteele09/hrdash/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the validated token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyAccount stores the account the token belongs to
	ContextKeyAccount ContextKey = "account"
)

// RequireAuth validates the bearer token and loads its account. Any failure answers 401 so the
// client treats it as an expired session; inactive accounts get 403.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Not authenticated")
				return
			}

			claims, err := s.issuer.Validate(raw)
			if err != nil {
				log.Debug().Err(err).Msg("Rejected access token")
				unauthorized(w, "Could not validate credentials")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				unauthorized(w, "Could not validate credentials")
				return
			}
			account, err := s.repos.Accounts.GetByID(userID)
			if err != nil {
				unauthorized(w, "User not found")
				return
			}
			if !account.IsActive {
				writeDetail(w, http.StatusForbidden, "User account is inactive")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyAccount, account)
			next(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func claimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*jwt.Claims)
	return claims
}

func accountFromContext(ctx context.Context) *users.Account {
	account, _ := ctx.Value(ContextKeyAccount).(*users.Account)
	return account
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}
