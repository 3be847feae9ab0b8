package domain

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultLockoutThreshold is the failed-login count at which an account
// locks when the caller does not configure one.
const DefaultLockoutThreshold = 5

// GroupResolver answers group-level permission queries on behalf of a
// principal. Implemented by rbac.GroupRegistry; a nil resolver means group
// membership contributes nothing.
type GroupResolver interface {
	// HasPermission reports whether the named group grants the permission,
	// directly or through its ancestors.
	HasPermission(groupName, permission string) bool
	// EffectivePermissions returns the full permission set of the named
	// group including everything inherited from ancestors.
	EffectivePermissions(groupName string) []*Permission
}

// Principal is a user account: identity, profile, credential state and
// authorization attachments. The ID never changes; the username is unique
// across the identity registry but may be renamed. Group membership is
// held as names, mirroring how groups reference their parents.
//
// All state transitions take the principal's own lock, so single-field
// updates are atomic even under concurrent logins.
type Principal struct {
	mu                   sync.RWMutex
	id                   string
	username             string
	firstName            string
	lastName             string
	email                string
	credentialHash       string
	active               bool
	locked               bool
	failedAttempts       int
	createdAt            time.Time
	lastLoginAt          *time.Time
	lastCredentialChange *time.Time
	groups               map[string]struct{}
	permissions          map[string]*Permission // direct grants, keyed by name
}

// NewPrincipal builds an active, unlocked Principal. The username is
// normalized and must be non-empty after normalization; the ID must be
// non-empty and is immutable from then on.
func NewPrincipal(id, username string) (*Principal, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrValidation("user id is required")
	}
	u := NormalizeName(username)
	if u == "" {
		return nil, ErrValidation("username is required")
	}
	return &Principal{
		id:          strings.TrimSpace(id),
		username:    u,
		active:      true,
		createdAt:   time.Now().UTC(),
		groups:      make(map[string]struct{}),
		permissions: make(map[string]*Permission),
	}, nil
}

// NewPrincipalFromRecord rebuilds a Principal from its persisted form.
// Direct permission grants are passed resolved because the record only
// carries their names.
func NewPrincipalFromRecord(rec UserRecord, direct []*Permission) (*Principal, error) {
	p, err := NewPrincipal(rec.ID, rec.Username)
	if err != nil {
		return nil, err
	}
	p.firstName = strings.TrimSpace(rec.FirstName)
	p.lastName = strings.TrimSpace(rec.LastName)
	p.email = strings.TrimSpace(rec.Email)
	p.credentialHash = rec.CredentialHash
	p.active = rec.Active
	p.locked = rec.Locked
	p.failedAttempts = rec.FailedAttempts
	if !rec.CreatedAt.IsZero() {
		p.createdAt = rec.CreatedAt
	}
	p.lastLoginAt = copyTime(rec.LastLoginAt)
	p.lastCredentialChange = copyTime(rec.LastCredentialChangeAt)
	for _, g := range rec.GroupNames {
		if n := NormalizeName(g); n != "" {
			p.groups[n] = struct{}{}
		}
	}
	for _, perm := range direct {
		if perm != nil {
			p.permissions[perm.Name()] = perm
		}
	}
	return p, nil
}

// ID returns the immutable user ID.
func (p *Principal) ID() string { return p.id }

// Username returns the current normalized username.
func (p *Principal) Username() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.username
}

// SetUsername renames the account. Uniqueness is the identity registry's
// concern; this only validates and normalizes.
func (p *Principal) SetUsername(username string) error {
	u := NormalizeName(username)
	if u == "" {
		return ErrValidation("username is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.username = u
	return nil
}

// FirstName returns the profile first name.
func (p *Principal) FirstName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.firstName
}

// LastName returns the profile last name.
func (p *Principal) LastName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastName
}

// Email returns the profile email address.
func (p *Principal) Email() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.email
}

// UpdateProfile replaces the profile fields in one step.
func (p *Principal) UpdateProfile(firstName, lastName, email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.firstName = strings.TrimSpace(firstName)
	p.lastName = strings.TrimSpace(lastName)
	p.email = strings.TrimSpace(email)
}

// FullName joins first and last name, tolerating either being empty.
func (p *Principal) FullName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return strings.TrimSpace(p.firstName + " " + p.lastName)
}

// CredentialHash returns the stored credential digest. The domain never
// hashes; callers hand in digests computed at the edges.
func (p *Principal) CredentialHash() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.credentialHash
}

// SetCredentialHash replaces the credential digest and stamps the change
// time.
func (p *Principal) SetCredentialHash(hash string) {
	now := time.Now().UTC()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credentialHash = hash
	p.lastCredentialChange = &now
}

// IsCredentialExpired reports whether the credential is older than maxDays,
// or was never set at all.
func (p *Principal) IsCredentialExpired(maxDays int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastCredentialChange == nil {
		return true
	}
	deadline := p.lastCredentialChange.Add(time.Duration(maxDays) * 24 * time.Hour)
	return time.Now().UTC().After(deadline)
}

// Active reports whether the account is administratively enabled.
func (p *Principal) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// SetActive enables or disables the account.
func (p *Principal) SetActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = active
}

// Locked reports whether the account is locked out.
func (p *Principal) Locked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.locked
}

// SetLocked locks or unlocks the account. Unlocking clears the failed
// attempt counter so the next streak starts from zero; locking leaves the
// counter as evidence of what happened.
func (p *Principal) SetLocked(locked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = locked
	if !locked {
		p.failedAttempts = 0
	}
}

// FailedAttempts returns the consecutive failed login count.
func (p *Principal) FailedAttempts() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.failedAttempts
}

// CanLogin reports whether the account may authenticate: active and not
// locked.
func (p *Principal) CanLogin() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active && !p.locked
}

// RecordSuccessfulLogin clears the failed attempt counter and stamps the
// login time.
func (p *Principal) RecordSuccessfulLogin() {
	now := time.Now().UTC()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failedAttempts = 0
	p.lastLoginAt = &now
}

// RecordFailedLogin increments the failed attempt counter and locks the
// account once the counter reaches threshold (DefaultLockoutThreshold when
// threshold is not positive). The counter keeps counting past the lock so
// continued attempts against a locked account remain visible. Returns
// whether the account is locked after this attempt.
func (p *Principal) RecordFailedLogin(threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failedAttempts++
	if p.failedAttempts >= threshold {
		p.locked = true
	}
	return p.locked
}

// CreatedAt returns the account creation time.
func (p *Principal) CreatedAt() time.Time { return p.createdAt }

// LastLoginAt returns the last successful login time, or nil if the
// account never logged in.
func (p *Principal) LastLoginAt() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyTime(p.lastLoginAt)
}

// LastCredentialChangeAt returns when the credential was last set, or nil
// if it never was.
func (p *Principal) LastCredentialChangeAt() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyTime(p.lastCredentialChange)
}

// AddGroup joins the account to a group by name.
func (p *Principal) AddGroup(name string) error {
	n := NormalizeName(name)
	if n == "" {
		return ErrValidation("group name is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups[n] = struct{}{}
	return nil
}

// RemoveGroup leaves a group by name. Returns true if the membership
// existed.
func (p *Principal) RemoveGroup(name string) bool {
	n := NormalizeName(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.groups[n]; !ok {
		return false
	}
	delete(p.groups, n)
	return true
}

// InGroup reports direct membership in the named group.
func (p *Principal) InGroup(name string) bool {
	n := NormalizeName(name)
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.groups[n]
	return ok
}

// Groups returns the group names in sorted order.
func (p *Principal) Groups() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.groupsLocked()
}

func (p *Principal) groupsLocked() []string {
	out := make([]string, 0, len(p.groups))
	for n := range p.groups {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AddPermission grants a permission directly to the account.
func (p *Principal) AddPermission(perm *Permission) {
	if perm == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permissions[perm.Name()] = perm
}

// RemovePermissionNamed revokes every direct grant matching query by name
// or alias. Returns true if something was removed.
func (p *Principal) RemovePermissionNamed(query string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := false
	for name, perm := range p.permissions {
		if perm.Matches(query) {
			delete(p.permissions, name)
			removed = true
		}
	}
	return removed
}

// DirectPermissions returns the direct grants sorted by name.
func (p *Principal) DirectPermissions() []*Permission {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Permission, 0, len(p.permissions))
	for _, perm := range p.permissions {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// HasDirectPermission reports whether a direct grant matches query,
// ignoring account state and group membership.
func (p *Principal) HasDirectPermission(query string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, perm := range p.permissions {
		if perm.Matches(query) {
			return true
		}
	}
	return false
}

// HasPermission is the authorization decision for one permission query.
// Inactive or locked accounts hold no permissions at all. Otherwise direct
// grants are checked first, then each group via the resolver, first match
// wins. The resolver is called without holding the principal's lock.
func (p *Principal) HasPermission(query string, resolver GroupResolver) bool {
	p.mu.RLock()
	if !p.active || p.locked {
		p.mu.RUnlock()
		return false
	}
	for _, perm := range p.permissions {
		if perm.Matches(query) {
			p.mu.RUnlock()
			return true
		}
	}
	groups := p.groupsLocked()
	p.mu.RUnlock()

	if resolver == nil {
		return false
	}
	for _, g := range groups {
		if resolver.HasPermission(g, query) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether at least one query is held. An empty
// query list is vacuously false.
func (p *Principal) HasAnyPermission(queries []string, resolver GroupResolver) bool {
	for _, q := range queries {
		if p.HasPermission(q, resolver) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every query is held. An empty query
// list is vacuously true.
func (p *Principal) HasAllPermissions(queries []string, resolver GroupResolver) bool {
	for _, q := range queries {
		if !p.HasPermission(q, resolver) {
			return false
		}
	}
	return true
}

// EffectivePermissions returns the union of direct grants and every
// permission inherited through group membership, sorted by name. The set
// is recomputed on each call; nothing is cached, so group edits show up
// immediately.
func (p *Principal) EffectivePermissions(resolver GroupResolver) []*Permission {
	p.mu.RLock()
	union := make(map[string]*Permission, len(p.permissions))
	for name, perm := range p.permissions {
		union[name] = perm
	}
	groups := p.groupsLocked()
	p.mu.RUnlock()

	if resolver != nil {
		for _, g := range groups {
			for _, perm := range resolver.EffectivePermissions(g) {
				union[perm.Name()] = perm
			}
		}
	}
	out := make([]*Permission, 0, len(union))
	for _, perm := range union {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Record converts the principal to its persisted form.
func (p *Principal) Record() UserRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	perms := make([]string, 0, len(p.permissions))
	for name := range p.permissions {
		perms = append(perms, name)
	}
	sort.Strings(perms)
	return UserRecord{
		ID:                     p.id,
		Username:               p.username,
		FirstName:              p.firstName,
		LastName:               p.lastName,
		Email:                  p.email,
		CredentialHash:         p.credentialHash,
		Active:                 p.active,
		Locked:                 p.locked,
		FailedAttempts:         p.failedAttempts,
		CreatedAt:              p.createdAt,
		LastLoginAt:            copyTime(p.lastLoginAt),
		LastCredentialChangeAt: copyTime(p.lastCredentialChange),
		GroupNames:             p.groupsLocked(),
		PermissionNames:        perms,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
