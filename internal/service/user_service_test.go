package service

import (
	"testing"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/pkg/apperror"

	"github.com/google/uuid"
)

func seedUsers(users *memUsers, roles ...model.Role) []*model.User {
	var out []*model.User
	for i, role := range roles {
		u := &model.User{Username: string(role) + string(rune('a'+i)), Email: string(rune('a'+i)) + "@example.com", Role: role, IsActive: true}
		users.Create(u)
		out = append(out, u)
	}
	return out
}

func TestUserAdministration(t *testing.T) {
	users := newMemUsers()
	seeded := seedUsers(users, model.RoleAdmin, model.RoleUser)
	adminActor := Actor{ID: seeded[0].ID.String(), Username: seeded[0].Username}
	svc := NewUserService(users)

	all, err := svc.GetAllUsers()
	if err != nil || len(all) != 2 {
		t.Fatalf("GetAllUsers = %v, %v", all, err)
	}

	promoted, err := svc.UpdateUser(seeded[1].ID, &UpdateUserRequest{Role: ptr("admin")}, adminActor)
	if err != nil || promoted.Role != model.RoleAdmin {
		t.Fatalf("UpdateUser = %+v, %v", promoted, err)
	}

	if err := svc.DeactivateUser(seeded[1].ID, adminActor); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}
	if got, _ := svc.GetUserByID(seeded[1].ID); got.IsActive {
		t.Error("user still active")
	}

	_, err = svc.UpdateUser(seeded[1].ID, &UpdateUserRequest{Role: ptr("owner")}, adminActor)
	requireKind(t, err, apperror.KindValidation)

	_, err = svc.GetUserByID(uuid.New())
	requireKind(t, err, apperror.KindNotFound)
}

func TestUserSelfLockout(t *testing.T) {
	users := newMemUsers()
	seeded := seedUsers(users, model.RoleAdmin)
	self := Actor{ID: seeded[0].ID.String(), Username: seeded[0].Username}
	svc := NewUserService(users)

	if _, err := svc.UpdateUser(seeded[0].ID, &UpdateUserRequest{Role: ptr("user")}, self); err != ErrSelfLockout {
		t.Errorf("demoting self: err = %v", err)
	}
	if err := svc.DeactivateUser(seeded[0].ID, self); err != ErrSelfLockout {
		t.Errorf("deactivating self: err = %v", err)
	}
	if _, err := svc.UpdateUser(seeded[0].ID, &UpdateUserRequest{IsActive: ptr(true)}, self); err != nil {
		t.Errorf("harmless self update rejected: %v", err)
	}
}
