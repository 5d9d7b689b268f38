package users

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrUsernameConflict = errors.New("username already registered")
)

// Account is the backend-side record behind an Identity. Only the stub backend handles it;
// the client only ever sees the embedded Identity.
type Account struct {
	Identity
	PasswordHash string `json:"-"` // bcrypt hash - never serialize
}

type AccountRepo interface {
	Create(account *Account) error
	Upsert(account *Account) error
	GetByUsername(username string) (*Account, error)
	GetByID(id int64) (*Account, error)
	List(offset, limit int) ([]*Account, error)
	SetLastLogin(id int64, at time.Time) error
}
