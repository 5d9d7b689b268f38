package server

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/jrsteele09/hrdash/internal/utils"
	"github.com/jrsteele09/hrdash/token"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const msgIncorrectLogin = "Incorrect username or password"

// LoginHandler checks the password and issues an access token for one day, or seven with remember_me
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req token.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := users.ValidateLoginInput(req.Username, req.Password); err != nil {
			writeValidationError(w, "body", "username", err.Error())
			return
		}

		account, err := s.repos.Accounts.GetByUsername(strings.TrimSpace(req.Username))
		if err != nil || account.PasswordHash == "" || !users.CheckPasswordHash(req.Password, account.PasswordHash) {
			writeDetail(w, http.StatusUnauthorized, msgIncorrectLogin)
			return
		}
		if !account.IsActive {
			writeDetail(w, http.StatusForbidden, "User account is inactive")
			return
		}

		ttl := s.config.GetTokenExpiry()
		if req.RememberMe {
			ttl = s.config.GetRememberMeExpiry()
		}
		accessToken, _, err := s.issuer.Issue(&account.Identity, ttl)
		if err != nil {
			log.Err(err).Str("username", account.Username).Msg("Failed to issue access token")
			writeDetail(w, http.StatusInternalServerError, "Failed to issue token")
			return
		}

		now := s.nowTime()
		if err := s.repos.Accounts.SetLastLogin(account.ID, now); err != nil {
			log.Warn().Err(err).Int64("user_id", account.ID).Msg("Failed to record last login")
		}
		account.LastLoginAt = users.NewTimestamp(now)

		writeJSON(w, http.StatusOK, token.LoginResponse{
			AccessToken: accessToken,
			TokenType:   token.DefaultTokenType,
			ExpiresIn:   int(ttl.Seconds()),
			User:        account.Identity,
		})
	}
}

// RegisterHandler creates an active account with the default user role
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req token.RegisterRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := users.ValidateLoginInput(req.Username, req.Password); err != nil {
			writeValidationError(w, "body", "username", err.Error())
			return
		}
		if email := strings.TrimSpace(utils.Value(req.Email)); email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				writeValidationError(w, "body", "email", "value is not a valid email address")
				return
			}
			taken, err := s.emailTaken(email)
			if err != nil {
				writeDetail(w, http.StatusInternalServerError, "Registration failed")
				return
			}
			if taken {
				writeDetail(w, http.StatusBadRequest, "Email already registered")
				return
			}
		}

		hash, err := users.HashPassword(req.Password)
		if err != nil {
			log.Err(err).Msg("Failed to hash password")
			writeDetail(w, http.StatusInternalServerError, "Registration failed")
			return
		}
		account := &users.Account{
			Identity: users.Identity{
				Username: strings.TrimSpace(req.Username),
				Email:    req.Email,
				FullName: req.FullName,
				Role:     users.RoleUser,
				IsActive: true,
			},
			PasswordHash: hash,
		}
		if err := s.repos.Accounts.Create(account); err != nil {
			if errors.Is(err, users.ErrUsernameConflict) {
				writeDetail(w, http.StatusBadRequest, "Username already registered")
				return
			}
			log.Err(err).Msg("Failed to create account")
			writeDetail(w, http.StatusInternalServerError, "Registration failed")
			return
		}
		writeJSON(w, http.StatusOK, account.Identity)
	}
}

func (s *Server) emailTaken(email string) (bool, error) {
	accounts, err := s.repos.Accounts.List(0, 0)
	if err != nil {
		return false, err
	}
	for _, a := range accounts {
		if strings.EqualFold(utils.Value(a.Email), email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, accountFromContext(r.Context()).Identity)
	}
}

// LogoutHandler revokes the presented token for the rest of its lifetime
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if err := s.repos.Revoked.Revoke(claims.ID, claims.ExpiresAt.Time); err != nil {
			log.Warn().Err(err).Str("jti", claims.ID).Msg("Failed to revoke token on logout")
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
