package users

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/hrdash/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// RoleType is the role tag the backend assigns to an account
type RoleType string

const (
	RoleAdmin RoleType = "admin" // Manages accounts and sees every report
	RoleHR    RoleType = "hr"    // Reads reports and analytics for the whole team
	RoleUser  RoleType = "user"  // Default role for self-registered accounts
)

const (
	minUsernameLength = 3
	maxUsernameLength = 100
	minPasswordLength = 6
)

// Identity is the authenticated user's profile as returned by /api/auth/login and /api/auth/me.
// Optional fields are pointers so that a missing value survives a persist/rehydrate round trip.
type Identity struct {
	ID           int64      `json:"id"`                       // Backend user id
	Username     string     `json:"username"`                 // Unique login name
	Email        *string    `json:"email,omitempty"`          // Optional contact address
	FullName     *string    `json:"full_name,omitempty"`      // Optional display name
	FeishuUserID *string    `json:"feishu_user_id,omitempty"` // User id in the external messaging system
	AvatarURL    *string    `json:"avatar_url,omitempty"`     // Optional avatar reference
	Role         RoleType   `json:"role"`                     // admin, hr or user
	IsActive     bool       `json:"is_active"`                // Inactive accounts cannot log in
	CreatedAt    *Timestamp `json:"created_at,omitempty"`     // Account creation time
	LastLoginAt  *Timestamp `json:"last_login_at,omitempty"`  // Previous successful login
}

// Validate checks the minimum an Identity needs before it can back a session
func (i *Identity) Validate() error {
	if i == nil {
		return fmt.Errorf("identity is nil")
	}
	if strings.TrimSpace(i.Username) == "" {
		return fmt.Errorf("identity has no username")
	}
	return nil
}

// DisplayName prefers the full name and falls back to the username
func (i *Identity) DisplayName() string {
	if name := strings.TrimSpace(utils.Value(i.FullName)); name != "" {
		return name
	}
	return i.Username
}

// HasRole reports whether the identity holds any of the given roles.
// No roles means any authenticated identity qualifies.
func (i *Identity) HasRole(roles ...RoleType) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Clone returns a deep copy so callers can never mutate a session's identity through a shared pointer
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Email = clonePtr(i.Email)
	c.FullName = clonePtr(i.FullName)
	c.FeishuUserID = clonePtr(i.FeishuUserID)
	c.AvatarURL = clonePtr(i.AvatarURL)
	c.CreatedAt = clonePtr(i.CreatedAt)
	c.LastLoginAt = clonePtr(i.LastLoginAt)
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return utils.Ptr(*v)
}

// ValidateLoginInput applies the same bounds the backend enforces on login and registration:
// - username between 3 and 100 characters
// - password at least 6 characters
func ValidateLoginInput(username, password string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	if n < minUsernameLength || n > maxUsernameLength {
		return fmt.Errorf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
