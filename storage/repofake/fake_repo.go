package repofake

import (
	"sync"

	"github.com/jrsteele09/hrdash/storage"
)

var _ storage.Repo = (*FakeRepo)(nil)

// FakeRepo is an in-memory storage.Repo. Write failures can be injected for tests.
type FakeRepo struct {
	values   map[string]string
	writeErr error
	failKeys map[string]bool
	lock     sync.RWMutex
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		values:   make(map[string]string),
		failKeys: make(map[string]bool),
	}
}

// FailWrites makes Set and Delete return err for the given keys, or for every key when none are given.
// A nil err clears the injection.
func (r *FakeRepo) FailWrites(err error, keys ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.writeErr = err
	r.failKeys = make(map[string]bool)
	for _, k := range keys {
		r.failKeys[k] = true
	}
}

func (r *FakeRepo) shouldFail(key string) error {
	if r.writeErr == nil {
		return nil
	}
	if len(r.failKeys) == 0 || r.failKeys[key] {
		return r.writeErr
	}
	return nil
}

func (r *FakeRepo) Get(key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (r *FakeRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.shouldFail(key); err != nil {
		return err
	}
	r.values[key] = value
	return nil
}

func (r *FakeRepo) Delete(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.shouldFail(key); err != nil {
		return err
	}
	delete(r.values, key)
	return nil
}

// Has reports whether key is present
func (r *FakeRepo) Has(key string) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.values[key]
	return ok
}

func (r *FakeRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.values)
}
