// Package memory is a process-local store for roles and users with the same
// unique constraints as the MongoDB store. It backs STORE_DRIVER=memory and
// the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

type accountDoc struct {
	account      domain.Account
	passwordHash string
	roleID       string
}

// Store holds both collections behind one lock so account reads can
// populate roles consistently.
type Store struct {
	mu       sync.RWMutex
	roles    map[string]*domain.Role
	accounts map[string]*accountDoc
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		roles:    make(map[string]*domain.Role),
		accounts: make(map[string]*accountDoc),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Roles returns the role collection view.
func (s *Store) Roles() *RoleRepository { return &RoleRepository{s: s} }

// Accounts returns the user collection view.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// Ping always succeeds; it lets the readiness probe treat both drivers alike.
func (s *Store) Ping(context.Context) error { return nil }

// RoleRepository implements ports.RoleRepository.
type RoleRepository struct {
	s *Store
}

var _ ports.RoleRepository = (*RoleRepository)(nil)

func cloneRole(r *domain.Role) *domain.Role {
	c := *r
	c.Permissions = append([]domain.Permission(nil), r.Permissions...)
	return &c
}

func (r *RoleRepository) Insert(_ context.Context, in ports.NewRole) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.roles {
		if strings.EqualFold(existing.Name, in.Name) {
			return nil, &ports.ConstraintViolation{Field: "name"}
		}
	}
	now := r.s.now()
	role := &domain.Role{
		ID:          primitive.NewObjectID().Hex(),
		Name:        in.Name,
		Description: in.Description,
		Permissions: append([]domain.Permission(nil), in.Permissions...),
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.roles[role.ID] = role
	return cloneRole(role), nil
}

func (r *RoleRepository) FindAll(_ context.Context) ([]*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, cloneRole(role))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RoleRepository) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, ports.ErrNoDocument
	}
	return cloneRole(role), nil
}

func (r *RoleRepository) FindByName(_ context.Context, name string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, role := range r.s.roles {
		if strings.EqualFold(role.Name, name) {
			return cloneRole(role), nil
		}
	}
	return nil, ports.ErrNoDocument
}

func (r *RoleRepository) UpdateByID(_ context.Context, id string, patch ports.RolePatch) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, ports.ErrNoDocument
	}
	if patch.Name != nil {
		for otherID, other := range r.s.roles {
			if otherID != id && strings.EqualFold(other.Name, *patch.Name) {
				return nil, &ports.ConstraintViolation{Field: "name"}
			}
		}
		role.Name = *patch.Name
	}
	if patch.Description != nil {
		role.Description = *patch.Description
	}
	if patch.Permissions != nil {
		role.Permissions = append([]domain.Permission(nil), (*patch.Permissions)...)
	}
	if patch.IsActive != nil {
		role.IsActive = *patch.IsActive
	}
	role.UpdatedAt = r.s.now()
	return cloneRole(role), nil
}

func (r *RoleRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[id]; !ok {
		return false, nil
	}
	delete(r.s.roles, id)
	return true, nil
}

// AccountRepository implements ports.AccountRepository.
type AccountRepository struct {
	s *Store
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

// view renders a stored account with its role populated. Caller holds the lock.
func (s *Store) view(doc *accountDoc) *domain.Account {
	a := doc.account
	if doc.account.DateOfBirth != nil {
		dob := *doc.account.DateOfBirth
		a.DateOfBirth = &dob
	}
	a.Role = domain.RoleRef{ID: doc.roleID}
	if role, ok := s.roles[doc.roleID]; ok {
		a.Role = role.Ref()
	}
	return &a
}

func (r *AccountRepository) Insert(_ context.Context, in ports.NewAccount) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.account.Email == in.Email {
			return nil, &ports.ConstraintViolation{Field: "email"}
		}
	}
	now := r.s.now()
	doc := &accountDoc{
		account: domain.Account{
			ID:        primitive.NewObjectID().Hex(),
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			Phone:     in.Phone,
			IsActive:  in.IsActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: in.PasswordHash,
		roleID:       in.RoleID,
	}
	if in.DateOfBirth != nil {
		dob := *in.DateOfBirth
		doc.account.DateOfBirth = &dob
	}
	r.s.accounts[doc.account.ID] = doc
	return r.s.view(doc), nil
}

func (r *AccountRepository) FindAll(_ context.Context) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(r.s.accounts))
	for _, doc := range r.s.accounts {
		out = append(out, r.s.view(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doc, ok := r.s.accounts[id]
	if !ok {
		return nil, ports.ErrNoDocument
	}
	return r.s.view(doc), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, doc := range r.s.accounts {
		if doc.account.Email == email {
			return r.s.view(doc), nil
		}
	}
	return nil, ports.ErrNoDocument
}

func (r *AccountRepository) UpdateByID(_ context.Context, id string, patch ports.AccountPatch) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc, ok := r.s.accounts[id]
	if !ok {
		return nil, ports.ErrNoDocument
	}
	if patch.Email != nil {
		for otherID, other := range r.s.accounts {
			if otherID != id && other.account.Email == *patch.Email {
				return nil, &ports.ConstraintViolation{Field: "email"}
			}
		}
		doc.account.Email = *patch.Email
	}
	if patch.FirstName != nil {
		doc.account.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		doc.account.LastName = *patch.LastName
	}
	if patch.PasswordHash != nil {
		doc.passwordHash = *patch.PasswordHash
	}
	if patch.Phone != nil {
		doc.account.Phone = *patch.Phone
	}
	if patch.DateOfBirth != nil {
		dob := *patch.DateOfBirth
		doc.account.DateOfBirth = &dob
	}
	if patch.ClearDateOfBirth {
		doc.account.DateOfBirth = nil
	}
	if patch.RoleID != nil {
		doc.roleID = *patch.RoleID
	}
	if patch.IsActive != nil {
		doc.account.IsActive = *patch.IsActive
	}
	doc.account.UpdatedAt = r.s.now()
	return r.s.view(doc), nil
}

func (r *AccountRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[id]; !ok {
		return false, nil
	}
	delete(r.s.accounts, id)
	return true, nil
}

func (r *AccountRepository) CountByRole(_ context.Context, roleID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, doc := range r.s.accounts {
		if doc.roleID == roleID {
			n++
		}
	}
	return n, nil
}

// PasswordHash returns the stored hash for id. It is not part of the
// repository port: nothing outside the store reads hashes back.
func (r *AccountRepository) PasswordHash(id string) (string, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doc, ok := r.s.accounts[id]
	if !ok {
		return "", false
	}
	return doc.passwordHash, true
}

// Len reports the number of stored users.
func (r *AccountRepository) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.accounts)
}
