// Package session holds the signed-in user and their bearer credential, persists them through a
// storage.Repo and restores them when the process starts.
package session

import (
	"context"
	"encoding/json"
	"sync"

	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/jrsteele09/hrdash/storage"
	"github.com/jrsteele09/hrdash/token"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Snapshot is an immutable view of the session. Identity and Credential are either both set or
// both nil; the values they point to must not be modified.
type Snapshot struct {
	Identity   *users.Identity
	Credential *token.Credential
	Restored   bool // Persisted state has been read (whatever the outcome)
}

func (s Snapshot) IsAuthenticated() bool {
	return s.Identity != nil
}

// Token returns the raw access token or "" when anonymous
func (s Snapshot) Token() string {
	if s.Credential == nil {
		return ""
	}
	return s.Credential.AccessToken
}

// RemoteLogout notifies the backend that the current credential is no longer in use
type RemoteLogout interface {
	Logout(ctx context.Context) error
}

// Listener is called after every state transition, outside the store's locks
type Listener func(prev, next Snapshot)

type StoreOption func(*Store)

func WithRemoteLogout(remote RemoteLogout) StoreOption {
	return func(s *Store) {
		s.remote = remote
	}
}

func WithListener(fn Listener) StoreOption {
	return func(s *Store) {
		s.listeners[s.nextListenerID] = fn
		s.nextListenerID++
	}
}

type Store struct {
	repo   storage.Repo
	remote RemoteLogout

	lock      sync.RWMutex // Guards current, remote and listeners
	writeLock sync.Mutex   // Serialises storage writes with the snapshot swap that follows them
	current   Snapshot

	restored    chan struct{}
	restoreOnce sync.Once

	listeners      map[int]Listener
	nextListenerID int
}

// NewStore creates an empty, not yet restored session backed by repo
func NewStore(repo storage.Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[session.NewStore] storage repo is required")
	}
	s := &Store{
		repo:      repo,
		restored:  make(chan struct{}),
		listeners: make(map[int]Listener),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SetRemote replaces the remote-logout notifier. The API client is usually built after the
// store, since it needs the store to authorize requests.
func (s *Store) SetRemote(remote RemoteLogout) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.remote = remote
}

// Subscribe registers fn for state transitions and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = fn
	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.listeners, id)
	}
}

// Initialize rehydrates the session from storage. Only the first call reads storage; every call
// returns the snapshot as it stands afterwards, with Restored set.
func (s *Store) Initialize() Snapshot {
	s.restoreOnce.Do(func() {
		s.writeLock.Lock()
		identity, credential := s.load()
		prev, next := s.swap(func(snap *Snapshot) {
			// A login that raced ahead of rehydration wins; it has already persisted itself
			if !snap.IsAuthenticated() {
				snap.Identity = identity
				snap.Credential = credential
			}
			snap.Restored = true
		})
		s.writeLock.Unlock()

		close(s.restored)
		log.Debug().Bool("authenticated", next.IsAuthenticated()).Msg("Session restored")
		s.notify(prev, next)
	})
	return s.Snapshot()
}

// WaitRestored blocks until Initialize has completed or ctx is done
func (s *Store) WaitRestored(ctx context.Context) error {
	select {
	case <-s.restored:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) Restored() bool {
	select {
	case <-s.restored:
		return true
	default:
		return false
	}
}

// load reads the persisted pair. Any missing or undecodable half erases both keys.
// Read failures other than a missing key leave storage alone and yield no session.
func (s *Store) load() (*users.Identity, *token.Credential) {
	credValue, credErr := s.repo.Get(storage.KeyCredential)
	identityValue, identityErr := s.repo.Get(storage.KeyIdentity)

	for _, err := range []error{credErr, identityErr} {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Err(err).Msg("Unable to read persisted session")
			return nil, nil
		}
	}
	if credErr != nil && identityErr != nil {
		return nil, nil
	}
	if credErr != nil || identityErr != nil {
		log.Warn().Msg("Persisted session is incomplete, discarding it")
		s.erase()
		return nil, nil
	}

	credential, err := token.DecodeCredential(credValue)
	if err != nil {
		log.Warn().Err(err).Msg("Persisted credential is unreadable, discarding session")
		s.erase()
		return nil, nil
	}

	var identity users.Identity
	if err := json.Unmarshal([]byte(identityValue), &identity); err != nil {
		log.Warn().Err(err).Msg("Persisted user is unreadable, discarding session")
		s.erase()
		return nil, nil
	}
	if err := identity.Validate(); err != nil {
		log.Warn().Err(err).Msg("Persisted user is invalid, discarding session")
		s.erase()
		return nil, nil
	}
	return &identity, credential
}

// Login persists credential and identity and then makes them the current session. If storage
// rejects either write, the previously persisted state is put back and the session is unchanged.
func (s *Store) Login(credential token.Credential, identity users.Identity) error {
	if credential.Empty() {
		return apperrors.Wrapf(apperrors.ErrInvalidArgument, "[Store.Login] empty access token")
	}
	if err := identity.Validate(); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidArgument, "[Store.Login] %v", err)
	}
	if credential.TokenType == "" {
		credential.TokenType = token.DefaultTokenType
	}
	newIdentity := identity.Clone()

	s.writeLock.Lock()
	prev := s.Snapshot()
	if err := s.persist(&credential, newIdentity); err != nil {
		s.rollback(prev)
		s.writeLock.Unlock()
		return errors.Wrap(err, "[Store.Login] persist session")
	}
	prev, next := s.swap(func(snap *Snapshot) {
		snap.Identity = newIdentity
		snap.Credential = &credential
	})
	s.writeLock.Unlock()

	log.Info().Str("username", newIdentity.Username).Str("role", string(newIdentity.Role)).Msg("Signed in")
	s.notify(prev, next)
	return nil
}

// UpdateIdentity replaces the stored user (after a fresh /me fetch) while keeping the credential
func (s *Store) UpdateIdentity(identity users.Identity) error {
	if err := identity.Validate(); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidArgument, "[Store.UpdateIdentity] %v", err)
	}
	newIdentity := identity.Clone()

	s.writeLock.Lock()
	cur := s.Snapshot()
	if !cur.IsAuthenticated() {
		s.writeLock.Unlock()
		return apperrors.ErrNotAuthenticated
	}
	if err := s.persistIdentity(newIdentity); err != nil {
		s.writeLock.Unlock()
		return errors.Wrap(err, "[Store.UpdateIdentity] persist user")
	}
	prev, next := s.swap(func(snap *Snapshot) {
		snap.Identity = newIdentity
	})
	s.writeLock.Unlock()

	s.notify(prev, next)
	return nil
}

// Logout tells the backend (best effort) and then clears the session locally. A failed remote
// call is logged and does not stop the local clear.
func (s *Store) Logout(ctx context.Context) {
	s.lock.RLock()
	remote := s.remote
	authenticated := s.current.IsAuthenticated()
	s.lock.RUnlock()

	// The remote call goes through the request pipeline, which may itself call Expire,
	// so it must run before writeLock is taken.
	if remote != nil && authenticated {
		if err := remote.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("Remote logout failed, clearing local session anyway")
		}
	}
	s.clear(func(Snapshot) bool { return true })
	log.Info().Msg("Signed out")
}

// Expire clears the session after the backend rejected accessToken, without contacting the
// backend. It returns false and leaves the session alone when a newer login has already replaced
// accessToken. An empty accessToken marks a request sent without credentials: it only expires
// an anonymous session, since any current login happened after the request left.
func (s *Store) Expire(accessToken string) bool {
	return s.clear(func(cur Snapshot) bool {
		return !cur.IsAuthenticated() || cur.Token() == accessToken
	})
}

// clear erases storage and memory when shouldClear approves the current snapshot
func (s *Store) clear(shouldClear func(Snapshot) bool) bool {
	s.writeLock.Lock()
	cur := s.Snapshot()
	if !shouldClear(cur) {
		s.writeLock.Unlock()
		return false
	}
	s.erase()
	prev, next := s.swap(func(snap *Snapshot) {
		snap.Identity = nil
		snap.Credential = nil
	})
	s.writeLock.Unlock()

	if prev.IsAuthenticated() {
		s.notify(prev, next)
	}
	return true
}

func (s *Store) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current
}

func (s *Store) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// Identity returns a copy of the signed-in user, or nil
func (s *Store) Identity() *users.Identity {
	return s.Snapshot().Identity.Clone()
}

// Credential returns a copy of the bearer credential, or nil
func (s *Store) Credential() *token.Credential {
	c := s.Snapshot().Credential
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// swap applies mutate to a copy of the current snapshot and installs it. Callers hold writeLock.
func (s *Store) swap(mutate func(*Snapshot)) (prev, next Snapshot) {
	s.lock.Lock()
	defer s.lock.Unlock()

	prev = s.current
	next = prev
	mutate(&next)
	s.current = next
	return prev, next
}

func (s *Store) notify(prev, next Snapshot) {
	s.lock.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.lock.RUnlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (s *Store) persist(credential *token.Credential, identity *users.Identity) error {
	encoded, err := credential.Encode()
	if err != nil {
		return err
	}
	if err := s.repo.Set(storage.KeyCredential, encoded); err != nil {
		return err
	}
	return s.persistIdentity(identity)
}

func (s *Store) persistIdentity(identity *users.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return errors.Wrap(err, "marshal user")
	}
	return s.repo.Set(storage.KeyIdentity, string(data))
}

// rollback restores storage to match prev after a failed login write
func (s *Store) rollback(prev Snapshot) {
	if !prev.IsAuthenticated() {
		s.erase()
		return
	}
	if err := s.persist(prev.Credential, prev.Identity); err != nil {
		log.Err(err).Msg("Unable to restore previous session after failed login")
	}
}

// erase deletes both keys. Failures are logged; memory is cleared regardless.
func (s *Store) erase() {
	for _, key := range []string{storage.KeyCredential, storage.KeyIdentity} {
		if err := s.repo.Delete(key); err != nil {
			log.Err(err).Str("key", key).Msg("Unable to delete persisted session key")
		}
	}
}
