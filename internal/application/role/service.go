// Package role implements the role repository semantics on top of the
// catalog, the grant-set computations, and a whole-collection store port.
package role

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"clarion/internal/domain/catalog"
	"clarion/internal/domain/grants"
	"clarion/internal/domain/role"
	"clarion/internal/shared/logger"
)

// ErrStoreWrite wraps a failed wholesale store write. The in-memory
// collection stays authoritative for the session; callers decide whether to
// surface the degraded persistence to the user.
var ErrStoreWrite = errors.New("role store write failed")

// Service holds the authoritative role collection for the session.
type Service struct {
	cat      *catalog.Catalog
	store    role.Store
	roles    map[string]*role.Role
	collator *collate.Collator
	logger   logger.Interface
}

func NewService(cat *catalog.Catalog, store role.Store, log logger.Interface) *Service {
	return &Service{
		cat:      cat,
		store:    store,
		roles:    make(map[string]*role.Role),
		collator: collate.New(language.Und, collate.IgnoreCase),
		logger:   log,
	}
}

// Initialize loads the collection from the store. An empty or unreadable
// store fails open: the fixed system roles are seeded and persisted
// immediately, and the session proceeds. Loaded grant sets are pruned
// against the catalog so leaves from an older catalog revision never
// re-enter the session or the next wholesale write.
func (s *Service) Initialize(ctx context.Context) error {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warnw("role store unreadable, reseeding system roles", "error", err)
		loaded = nil
	}

	if len(loaded) > 0 {
		s.roles = make(map[string]*role.Role, len(loaded))
		for id, r := range loaded {
			pruned, err := s.pruneLoaded(r)
			if err != nil {
				return err
			}
			s.roles[id] = pruned
		}
		s.logger.Infow("role collection loaded", "count", len(s.roles))
		return nil
	}

	return s.Seed(ctx, false)
}

// pruneLoaded drops grant leaves that no longer exist in the catalog.
func (s *Service) pruneLoaded(r *role.Role) (*role.Role, error) {
	pruned := r.Permissions().Pruned(s.cat)
	if pruned.GrantedCount() == r.Permissions().GrantedCount() {
		return r, nil
	}

	s.logger.Warnw("dropping stale permission leaves",
		"role_id", r.ID(),
		"name", r.Name(),
		"dropped", r.Permissions().GrantedCount()-pruned.GrantedCount())

	return role.ReconstructRole(
		r.ID(),
		r.Name(),
		r.Description(),
		pruned,
		r.IsSystem(),
		r.CreatedBy(),
		r.CreatedAt(),
		r.UpdatedAt(),
	)
}

// Seed inserts the fixed system roles. With force, existing system roles are
// replaced by fresh seeds; custom roles are never touched either way.
func (s *Service) Seed(ctx context.Context, force bool) error {
	if force {
		for id, r := range s.roles {
			if r.IsSystem() {
				delete(s.roles, id)
			}
		}
	} else {
		for _, r := range s.roles {
			if r.IsSystem() {
				return nil
			}
		}
	}

	seeded, err := SystemRoleSeeds(s.cat)
	if err != nil {
		return fmt.Errorf("failed to build system role seeds: %w", err)
	}
	for _, r := range seeded {
		s.roles[r.ID()] = r
	}
	s.logger.Infow("system roles seeded", "count", len(seeded))

	return s.persist(ctx)
}

// Get returns the role with the given id.
func (s *Service) Get(id string) (*role.Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return nil, role.ErrRoleNotFound
	}
	return r, nil
}

// List returns every role, system roles first, each group ordered
// alphabetically without regard to case.
func (s *Service) List() []*role.Role {
	out := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsSystem() != b.IsSystem() {
			return a.IsSystem()
		}
		if cmp := s.collator.CompareString(a.Name(), b.Name()); cmp != 0 {
			return cmp < 0
		}
		return a.ID() < b.ID()
	})
	return out
}

// IsDuplicateName reports whether any role other than excludeID already uses
// the name, compared trimmed and case-insensitively. Editing a role must not
// flag its own unchanged name, hence the exclusion.
func (s *Service) IsDuplicateName(name, excludeID string) bool {
	name = strings.TrimSpace(name)
	for id, r := range s.roles {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(r.Name(), name) {
			return true
		}
	}
	return false
}

// ValidateRoleInput runs the sequenced edit checks; the first failure wins.
// It must pass before Create or Update is invoked.
func (s *Service) ValidateRoleInput(name, excludeID string, permissions grants.GrantSet) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return role.ErrEmptyName
	}
	if len([]rune(trimmed)) < role.MinNameLength {
		return role.ErrNameTooShort
	}
	if s.IsDuplicateName(trimmed, excludeID) {
		return role.ErrDuplicateName
	}
	if permissions.Pruned(s.cat).IsEmpty() {
		return role.ErrNoPermissionsSelected
	}
	return nil
}

// Create inserts a new custom role and persists the collection. It is a
// dumb store operation: name-uniqueness and minimum-permission rules are
// ValidateRoleInput's job, run by the caller beforehand.
func (s *Service) Create(ctx context.Context, name, description string, permissions grants.GrantSet, createdBy string) (*role.Role, error) {
	r, err := role.NewRole(name, description, permissions.Pruned(s.cat), createdBy)
	if err != nil {
		return nil, err
	}

	s.roles[r.ID()] = r
	s.logger.Infow("role created", "role_id", r.ID(), "name", r.Name())

	if err := s.persist(ctx); err != nil {
		return r, err
	}
	return r, nil
}

// Update replaces a custom role's name, description, and permissions.
func (s *Service) Update(ctx context.Context, id, name, description string, permissions grants.GrantSet) (*role.Role, error) {
	r, ok := s.roles[id]
	if !ok {
		return nil, role.ErrRoleNotFound
	}

	if err := r.Update(name, description, permissions.Pruned(s.cat)); err != nil {
		return nil, err
	}
	s.logger.Infow("role updated", "role_id", id, "name", r.Name())

	if err := s.persist(ctx); err != nil {
		return r, err
	}
	return r, nil
}

// Delete removes a custom role.
func (s *Service) Delete(ctx context.Context, id string) error {
	r, ok := s.roles[id]
	if !ok {
		return role.ErrRoleNotFound
	}
	if r.IsSystem() {
		return role.ErrSystemRoleImmutable
	}

	delete(s.roles, id)
	s.logger.Infow("role deleted", "role_id", id, "name", r.Name())

	return s.persist(ctx)
}

// Duplicate deep-copies a role under the first free "<name> (Copy)",
// "<name> (Copy 2)", ... name. The copy is always a custom role, even when
// the source is a system role.
func (s *Service) Duplicate(ctx context.Context, id, createdBy string) (*role.Role, error) {
	src, ok := s.roles[id]
	if !ok {
		return nil, role.ErrRoleNotFound
	}

	dup, err := src.Duplicate(s.copyName(src.Name()), createdBy)
	if err != nil {
		return nil, err
	}

	s.roles[dup.ID()] = dup
	s.logger.Infow("role duplicated", "source_id", id, "role_id", dup.ID(), "name", dup.Name())

	if err := s.persist(ctx); err != nil {
		return dup, err
	}
	return dup, nil
}

// copyName resolves the first non-colliding copy name.
func (s *Service) copyName(base string) string {
	candidate := base + " (Copy)"
	for n := 2; s.IsDuplicateName(candidate, ""); n++ {
		candidate = fmt.Sprintf("%s (Copy %d)", base, n)
	}
	return candidate
}

func (s *Service) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.roles); err != nil {
		s.logger.Errorw("failed to persist role collection", "error", err)
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}
