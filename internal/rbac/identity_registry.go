package rbac

import (
	"crypto/subtle"
	"sort"
	"sync"

	"posgate/internal/domain"
)

// IdentityRegistry holds every registered user, indexed by immutable ID
// and by normalized username. Both indexes point at the same Principal,
// so a lookup by either key observes the same state.
//
// Authentication mutates per-principal counters (lockout bookkeeping) but
// never the registry maps, so logins proceed under the read lock and only
// user add/remove/rename takes the write lock.
type IdentityRegistry struct {
	mu               sync.RWMutex
	byID             map[string]*domain.Principal
	byUsername       map[string]*domain.Principal
	lockoutThreshold int
}

// NewIdentityRegistry creates an empty registry. A non-positive threshold
// falls back to domain.DefaultLockoutThreshold.
func NewIdentityRegistry(lockoutThreshold int) *IdentityRegistry {
	if lockoutThreshold <= 0 {
		lockoutThreshold = domain.DefaultLockoutThreshold
	}
	return &IdentityRegistry{
		byID:             make(map[string]*domain.Principal),
		byUsername:       make(map[string]*domain.Principal),
		lockoutThreshold: lockoutThreshold,
	}
}

// LockoutThreshold returns the configured failed-login limit.
func (r *IdentityRegistry) LockoutThreshold() int { return r.lockoutThreshold }

// AddUser registers a principal under both indexes. A username already
// owned by a different ID is a conflict and leaves the existing user
// untouched. Re-adding the same ID replaces the stored principal, which
// is how upserts land after an edit.
func (r *IdentityRegistry) AddUser(p *domain.Principal) error {
	if p == nil {
		return domain.ErrValidation("user is required")
	}
	username := p.Username()
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byUsername[username]; ok && existing.ID() != p.ID() {
		return domain.ErrConflict("username %q is already taken", username)
	}
	if old, ok := r.byID[p.ID()]; ok {
		delete(r.byUsername, old.Username())
	}
	r.byID[p.ID()] = p
	r.byUsername[username] = p
	return nil
}

// RemoveUserByID drops a user from both indexes. Returns true if the user
// existed.
func (r *IdentityRegistry) RemoveUserByID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byUsername, p.Username())
	return true
}

// RemoveUserByUsername drops a user from both indexes. Returns true if
// the user existed.
func (r *IdentityRegistry) RemoveUserByUsername(username string) bool {
	n := domain.NormalizeName(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUsername[n]
	if !ok {
		return false
	}
	delete(r.byUsername, n)
	delete(r.byID, p.ID())
	return true
}

// RenameUser changes a user's username and reindexes in one step. Going
// through the registry keeps the username index consistent; calling
// SetUsername on the principal directly would desynchronize it.
func (r *IdentityRegistry) RenameUser(id, newUsername string) error {
	n := domain.NormalizeName(newUsername)
	if n == "" {
		return domain.ErrValidation("username is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	if existing, taken := r.byUsername[n]; taken && existing.ID() != id {
		return domain.ErrConflict("username %q is already taken", n)
	}
	old := p.Username()
	if err := p.SetUsername(n); err != nil {
		return err
	}
	delete(r.byUsername, old)
	r.byUsername[n] = p
	return nil
}

// UserByID looks up a user by immutable ID.
func (r *IdentityRegistry) UserByID(id string) (*domain.Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// UserByUsername looks up a user by normalized username.
func (r *IdentityRegistry) UserByUsername(username string) (*domain.Principal, bool) {
	n := domain.NormalizeName(username)
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byUsername[n]
	return p, ok
}

// Users returns all registered users sorted by username.
func (r *IdentityRegistry) Users() []*domain.Principal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Principal, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username() < out[j].Username() })
	return out
}

// UsersInGroup returns the users directly in the named group, sorted by
// username.
func (r *IdentityRegistry) UsersInGroup(groupName string) []*domain.Principal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Principal, 0)
	for _, p := range r.byID {
		if p.InGroup(groupName) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username() < out[j].Username() })
	return out
}

// Count returns the number of registered users.
func (r *IdentityRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// ActiveCount returns the number of users that could log in right now.
func (r *IdentityRegistry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, p := range r.byID {
		if p.CanLogin() {
			count++
		}
	}
	return count
}

// LockedCount returns the number of locked-out users.
func (r *IdentityRegistry) LockedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, p := range r.byID {
		if p.Locked() {
			count++
		}
	}
	return count
}

// Authenticate verifies a credential digest against the named account.
//
// Unknown users and accounts that cannot log in fail without touching any
// counters: probing a locked account does not dig it deeper, and blocked
// state is reported before the credential is even considered. A digest
// mismatch on a loginable account records a failed attempt, locking the
// account once the registry's threshold is reached. A match records the
// successful login and returns the principal.
func (r *IdentityRegistry) Authenticate(username, credentialHash string) (*domain.Principal, error) {
	n := domain.NormalizeName(username)
	r.mu.RLock()
	p, ok := r.byUsername[n]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrAuthFailed(domain.AuthUnknownUser, "unknown user %q", n)
	}
	if !p.CanLogin() {
		return nil, domain.ErrAuthFailed(domain.AuthNotLoginable, "account %q is inactive or locked", n)
	}
	// An account with no stored credential never matches.
	stored := p.CredentialHash()
	if stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(credentialHash)) == 1 {
		p.RecordSuccessfulLogin()
		return p, nil
	}
	p.RecordFailedLogin(r.lockoutThreshold)
	return nil, domain.ErrAuthFailed(domain.AuthBadCredentials, "invalid credentials for %q", n)
}

// ChangePassword replaces a user's credential digest, but only when the
// presented current digest matches.
func (r *IdentityRegistry) ChangePassword(id, oldHash, newHash string) error {
	if newHash == "" {
		return domain.ErrValidation("new credential is required")
	}
	p, ok := r.UserByID(id)
	if !ok {
		return domain.ErrNotFound("user %q not found", id)
	}
	stored := p.CredentialHash()
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(oldHash)) != 1 {
		return domain.ErrAuthFailed(domain.AuthBadCredentials, "current credential does not match")
	}
	p.SetCredentialHash(newHash)
	return nil
}
