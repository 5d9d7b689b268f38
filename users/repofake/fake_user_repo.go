package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/hrdash/users"
)

var _ users.AccountRepo = (*FakeAccountRepo)(nil)

type FakeAccountRepo struct {
	accounts    map[int64]*users.Account
	usernameIds map[string]int64 // lower-cased username to account id
	nextID      int64
	lock        sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts:    make(map[int64]*users.Account),
		usernameIds: make(map[string]int64),
	}
}

func (ar *FakeAccountRepo) Create(account *users.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if _, ok := ar.usernameIds[strings.ToLower(account.Username)]; ok {
		return users.ErrUsernameConflict
	}
	ar.store(account)
	return nil
}

func (ar *FakeAccountRepo) Upsert(account *users.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	ar.store(account)
	return nil
}

func (ar *FakeAccountRepo) store(account *users.Account) {
	if account.ID == 0 {
		ar.nextID++
		account.ID = ar.nextID
	} else if account.ID > ar.nextID {
		ar.nextID = account.ID
	}
	if account.CreatedAt == nil {
		account.CreatedAt = users.NewTimestamp(time.Now())
	}
	ar.accounts[account.ID] = account
	ar.usernameIds[strings.ToLower(account.Username)] = account.ID
}

func (ar *FakeAccountRepo) GetByUsername(username string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	id, ok := ar.usernameIds[strings.ToLower(username)]
	if !ok {
		return nil, users.ErrAccountNotFound
	}
	return ar.copyOf(id), nil
}

func (ar *FakeAccountRepo) GetByID(id int64) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	if _, ok := ar.accounts[id]; !ok {
		return nil, users.ErrAccountNotFound
	}
	return ar.copyOf(id), nil
}

func (ar *FakeAccountRepo) copyOf(id int64) *users.Account {
	a := ar.accounts[id]
	return &users.Account{Identity: *a.Identity.Clone(), PasswordHash: a.PasswordHash}
}

func (ar *FakeAccountRepo) List(offset, limit int) ([]*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	ids := make([]int64, 0, len(ar.accounts))
	for id := range ar.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if offset >= len(ids) {
		return []*users.Account{}, nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	list := make([]*users.Account, 0, end-offset)
	for _, id := range ids[offset:end] {
		list = append(list, ar.copyOf(id))
	}
	return list, nil
}

func (ar *FakeAccountRepo) SetLastLogin(id int64, at time.Time) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return users.ErrAccountNotFound
	}
	account.LastLoginAt = users.NewTimestamp(at)
	return nil
}
