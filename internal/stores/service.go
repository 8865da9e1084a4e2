package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	ListActive(ctx context.Context) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userStoreBinder interface {
	BindStore(ctx context.Context, userID, storeID uuid.UUID) error
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*StoreDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	ListActive(ctx context.Context) ([]*StoreDTO, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
}

type service struct {
	repo  storeRepository
	users userLoader
	bind  userStoreBinder
}

// NewService builds a store service with the provided repositories.
func NewService(repo storeRepository, usersRepo userLoader, binder userStoreBinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if binder == nil {
		return nil, fmt.Errorf("user store binder required")
	}
	return &service{repo: repo, users: usersRepo, bind: binder}, nil
}

// Create opens a store for the owner. A user owns at most one store; the
// owner's account is bound to the new store on success.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if owner.Role != enums.UserRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only owners can open stores")
	}

	if _, err := s.repo.FindByOwner(ctx, ownerID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner already has a store")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing store")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	store := &models.Store{
		Name:        name,
		Description: input.Description,
		LogoURL:     input.LogoURL,
		OwnerID:     ownerID,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	if err := s.bind.BindStore(ctx, ownerID, store.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind owner to store")
	}
	return FromModel(store), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) ListActive(ctx context.Context) ([]*StoreDTO, error) {
	stores, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	result := make([]*StoreDTO, 0, len(stores))
	for i := range stores {
		result = append(result, FromModel(&stores[i]))
	}
	return result, nil
}

// Update mutates store fields. Owners can only touch their own store;
// admins can touch the store they are bound to.
func (s *service) Update(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if err := s.authorizeStaff(ctx, actorID, actorRole, store); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		store.Name = name
	}
	if input.Description != nil {
		store.Description = input.Description
	}
	if input.LogoURL != nil {
		store.LogoURL = input.LogoURL
	}
	if input.IsActive != nil {
		store.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) authorizeStaff(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, store *models.Store) error {
	if actorRole == enums.UserRoleOwner && store.OwnerID == actorID {
		return nil
	}
	if actorRole == enums.UserRoleAdmin {
		actor, err := s.users.FindByID(ctx, actorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor")
		}
		if actor.StoreID != nil && *actor.StoreID == store.ID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient store role")
}
