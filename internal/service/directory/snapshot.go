package directory

import (
	"time"

	"golang.org/x/sync/errgroup"

	"posgate/internal/domain"
)

// Snapshot assembles a point-in-time export of the whole directory.
// Users are assembled in parallel because each entry walks the group
// graph for its effective permissions.
func (s *Service) Snapshot() domain.DirectorySnapshot {
	snap := domain.DirectorySnapshot{TakenAt: time.Now().UTC()}

	for _, p := range s.groups.Permissions() {
		snap.Permissions = append(snap.Permissions, domain.SnapshotPermission{
			Name:        p.Name(),
			Description: p.Description(),
			Aliases:     p.Aliases(),
			IsDefault:   p.IsDefault(),
		})
	}

	for _, grp := range s.groups.Groups() {
		sg := domain.SnapshotGroup{
			Name:        grp.Name(),
			Description: grp.Description(),
			IsDefault:   grp.IsDefault(),
			Parents:     grp.Parents(),
		}
		for _, p := range grp.Permissions() {
			sg.Permissions = append(sg.Permissions, p.Name())
		}
		snap.Groups = append(snap.Groups, sg)
	}

	users := s.identities.Users()
	snap.Users = make([]domain.SnapshotUser, len(users))

	var g errgroup.Group
	g.SetLimit(8)
	for i := range users {
		g.Go(func() error {
			u := users[i]
			su := domain.SnapshotUser{
				ID:             u.ID(),
				Username:       u.Username(),
				FirstName:      u.FirstName(),
				LastName:       u.LastName(),
				Email:          u.Email(),
				Active:         u.Active(),
				Locked:         u.Locked(),
				FailedAttempts: u.FailedAttempts(),
				CreatedAt:      u.CreatedAt(),
				LastLoginAt:    u.LastLoginAt(),
				Groups:         u.Groups(),
			}
			for _, p := range u.EffectivePermissions(s.groups) {
				su.Permissions = append(su.Permissions, p.Name())
			}
			snap.Users[i] = su
			return nil
		})
	}
	// Goroutines only assign their own index and never fail.
	_ = g.Wait()

	return snap
}
