package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
)

type stubStoreRepo struct {
	byID    map[uuid.UUID]*models.Store
	byOwner map[uuid.UUID]*models.Store
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{
		byID:    map[uuid.UUID]*models.Store{},
		byOwner: map[uuid.UUID]*models.Store{},
	}
}

func (r *stubStoreRepo) Create(_ context.Context, store *models.Store) error {
	store.ID = uuid.New()
	r.byID[store.ID] = store
	r.byOwner[store.OwnerID] = store
	return nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return store, nil
}

func (r *stubStoreRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.Store, error) {
	store, ok := r.byOwner[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return store, nil
}

func (r *stubStoreRepo) ListActive(_ context.Context) ([]models.Store, error) {
	var out []models.Store
	for _, store := range r.byID {
		if store.IsActive {
			out = append(out, *store)
		}
	}
	return out, nil
}

func (r *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	r.byID[store.ID] = store
	return nil
}

type stubUsers struct {
	byID  map[uuid.UUID]*models.User
	bound map[uuid.UUID]uuid.UUID
}

func newStubUsers() *stubUsers {
	return &stubUsers{
		byID:  map[uuid.UUID]*models.User{},
		bound: map[uuid.UUID]uuid.UUID{},
	}
}

func (u *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := u.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (u *stubUsers) BindStore(_ context.Context, userID, storeID uuid.UUID) error {
	u.bound[userID] = storeID
	if user, ok := u.byID[userID]; ok {
		id := storeID
		user.StoreID = &id
	}
	return nil
}

func seedOwner(users *stubUsers) *models.User {
	owner := &models.User{
		ID:       uuid.New(),
		Email:    "owner@example.com",
		Role:     enums.UserRoleOwner,
		IsActive: true,
	}
	users.byID[owner.ID] = owner
	return owner
}

func TestCreateStoreBindsOwner(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	users := newStubUsers()
	owner := seedOwner(users)

	svc, err := NewService(repo, users, users)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Create(context.Background(), owner.ID, CreateStoreInput{Name: "La Esquina"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.OwnerID != owner.ID {
		t.Fatalf("unexpected owner %s", dto.OwnerID)
	}
	if users.bound[owner.ID] != dto.ID {
		t.Fatal("owner account should be bound to the new store")
	}
}

func TestCreateStoreRejectsSecondStore(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	users := newStubUsers()
	owner := seedOwner(users)

	svc, _ := NewService(repo, users, users)
	if _, err := svc.Create(context.Background(), owner.ID, CreateStoreInput{Name: "First"}); err != nil {
		t.Fatalf("create first store: %v", err)
	}

	_, err := svc.Create(context.Background(), owner.ID, CreateStoreInput{Name: "Second"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateStoreRequiresOwnerRole(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	users := newStubUsers()
	customer := &models.User{ID: uuid.New(), Role: enums.UserRoleCustomer, IsActive: true}
	users.byID[customer.ID] = customer

	svc, _ := NewService(repo, users, users)
	_, err := svc.Create(context.Background(), customer.ID, CreateStoreInput{Name: "Nope"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateStoreAuthorization(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	users := newStubUsers()
	owner := seedOwner(users)

	svc, _ := NewService(repo, users, users)
	dto, err := svc.Create(context.Background(), owner.ID, CreateStoreInput{Name: "Mine"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	newName := "Renamed"
	updated, err := svc.Update(context.Background(), owner.ID, enums.UserRoleOwner, dto.ID, UpdateStoreInput{Name: &newName})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("expected rename, got %s", updated.Name)
	}

	stranger := uuid.New()
	_, err = svc.Update(context.Background(), stranger, enums.UserRoleOwner, dto.ID, UpdateStoreInput{Name: &newName})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}

	// An admin bound to this store may edit it.
	admin := &models.User{ID: uuid.New(), Role: enums.UserRoleAdmin, IsActive: true, StoreID: &dto.ID}
	users.byID[admin.ID] = admin
	if _, err := svc.Update(context.Background(), admin.ID, enums.UserRoleAdmin, dto.ID, UpdateStoreInput{Name: &newName}); err != nil {
		t.Fatalf("bound admin update: %v", err)
	}
}
