package repository

import (
	"context"
	"errors"
	"testing"

	"usercms/internal/model"
)

func TestUserRepo_CreateDefaultsAndValidation(t *testing.T) {
	repo := NewUserRepo(newTestStore(t, "usercreate"), testBcryptCost)
	ctx := context.Background()

	t.Run("role defaults to viewer", func(t *testing.T) {
		u, err := repo.Create(ctx, UserInput{
			FirstName: "Ana", LastName: "Ilieva", Email: "ana@example.com",
			Username: "ana", Password: "secret123",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if u.RoleID != model.ViewerRoleID || u.RoleName != "viewer" {
			t.Fatalf("got role_id=%d role_name=%q, want viewer default", u.RoleID, u.RoleName)
		}
		if u.Address != "" || u.Phone != "" {
			t.Fatalf("optional fields should default to empty, got %+v", u)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := repo.Create(ctx, UserInput{FirstName: "No", LastName: "Email", Username: "x", Password: "secret123"})
		if !IsValidation(err) {
			t.Fatalf("want ValidationError, got %v", err)
		}
	})

	t.Run("short password persists nothing", func(t *testing.T) {
		before, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		_, err = repo.Create(ctx, UserInput{
			FirstName: "Bo", LastName: "Kratki", Email: "bo@example.com",
			Username: "bo", Password: "12345",
		})
		if !IsValidation(err) {
			t.Fatalf("want ValidationError, got %v", err)
		}
		after, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(after) != len(before) {
			t.Fatalf("row persisted despite validation failure: %d -> %d", len(before), len(after))
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.Create(ctx, UserInput{
			FirstName: "Ana", LastName: "Again", Email: "ana2@example.com",
			Username: "ana", Password: "secret123",
		})
		if !errors.Is(err, ErrDuplicateUser) {
			t.Fatalf("want ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, UserInput{
			FirstName: "Ana", LastName: "Again", Email: "ana@example.com",
			Username: "ana2", Password: "secret123",
		})
		if !errors.Is(err, ErrDuplicateUser) {
			t.Fatalf("want ErrDuplicateUser, got %v", err)
		}
	})
}

func TestUserRepo_Authenticate(t *testing.T) {
	repo := NewUserRepo(newTestStore(t, "userauth"), testBcryptCost)
	ctx := context.Background()

	t.Run("seeded admin logs in", func(t *testing.T) {
		u, err := repo.Authenticate(ctx, "admin", "admin")
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
		if u.Username != "admin" || u.RoleName != "admin" || u.RoleID != model.AdminRoleID {
			t.Fatalf("unexpected admin projection: %+v", u)
		}
	})

	t.Run("wrong password and unknown user are identical", func(t *testing.T) {
		_, errWrong := repo.Authenticate(ctx, "admin", "nope")
		_, errUnknown := repo.Authenticate(ctx, "ghost", "nope")
		if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
			t.Fatalf("both must be ErrInvalidCredentials, got %v and %v", errWrong, errUnknown)
		}
		if errWrong.Error() != errUnknown.Error() {
			t.Fatalf("error shapes differ: %q vs %q", errWrong, errUnknown)
		}
	})
}

func TestUserRepo_UpdateResetsRoleWhenOmitted(t *testing.T) {
	repo := NewUserRepo(newTestStore(t, "userreset"), testBcryptCost)
	ctx := context.Background()

	u, err := repo.Create(ctx, UserInput{
		FirstName: "Mira", LastName: "Koleva", Email: "mira@example.com",
		Username: "mira", Password: "secret123", RoleID: 2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.RoleID != 2 {
		t.Fatalf("create ignored role_id: %+v", u)
	}

	// Saving without a role id reassigns the user to viewer.
	updated, err := repo.Update(ctx, u.ID, UserInput{
		FirstName: "Mira", LastName: "Koleva", Email: "mira@example.com",
		Username: "mira",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RoleID != model.FallbackRoleID || updated.RoleName != "viewer" {
		t.Fatalf("role not reset to viewer: %+v", updated)
	}
}

func TestUserRepo_UpdateMissingAndPassword(t *testing.T) {
	repo := NewUserRepo(newTestStore(t, "userupdate"), testBcryptCost)
	ctx := context.Background()

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.Update(ctx, 9999, UserInput{
			FirstName: "A", LastName: "B", Email: "ab@example.com", Username: "ab",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		u, err := repo.Create(ctx, UserInput{
			FirstName: "Pe", LastName: "Tur", Email: "pe@example.com",
			Username: "pe", Password: "secret123",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		_, err = repo.Update(ctx, u.ID, UserInput{
			FirstName: "Pe", LastName: "Tur", Email: "pe@example.com",
			Username: "pe", Password: "short",
		})
		if !IsValidation(err) {
			t.Fatalf("want ValidationError, got %v", err)
		}
	})

	t.Run("supplied password is rehashed", func(t *testing.T) {
		u, err := repo.Create(ctx, UserInput{
			FirstName: "Ro", LastName: "Ta", Email: "ro@example.com",
			Username: "ro", Password: "oldsecret",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := repo.Update(ctx, u.ID, UserInput{
			FirstName: "Ro", LastName: "Ta", Email: "ro@example.com",
			Username: "ro", Password: "newsecret",
		}); err != nil {
			t.Fatalf("update: %v", err)
		}
		if _, err := repo.Authenticate(ctx, "ro", "oldsecret"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("old password still works: %v", err)
		}
		if _, err := repo.Authenticate(ctx, "ro", "newsecret"); err != nil {
			t.Fatalf("new password rejected: %v", err)
		}
	})
}

func TestUserRepo_DeleteIsUnconditional(t *testing.T) {
	repo := NewUserRepo(newTestStore(t, "userdelete"), testBcryptCost)
	ctx := context.Background()

	if err := repo.Delete(ctx, 9999); err != nil {
		t.Fatalf("deleting a missing id must not error: %v", err)
	}

	u, err := repo.Create(ctx, UserInput{
		FirstName: "Go", LastName: "Ne", Email: "gone@example.com",
		Username: "gone", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user should be gone, got %v", err)
	}
}

func TestUserRepo_ChangePassword(t *testing.T) {
	repo := NewUserRepo(newTestStore(t, "userchpw"), testBcryptCost)
	ctx := context.Background()

	u, err := repo.Create(ctx, UserInput{
		FirstName: "Ключ", LastName: "Смяна", Email: "key@example.com",
		Username: "keys", Password: "original1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("missing user", func(t *testing.T) {
		if err := repo.ChangePassword(ctx, 9999, "original1", "brandnew1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})
	t.Run("short new password", func(t *testing.T) {
		if err := repo.ChangePassword(ctx, u.ID, "original1", "tiny"); !IsValidation(err) {
			t.Fatalf("want ValidationError, got %v", err)
		}
	})
	t.Run("wrong current password", func(t *testing.T) {
		if err := repo.ChangePassword(ctx, u.ID, "wrong", "brandnew1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("want ErrInvalidCredentials, got %v", err)
		}
	})
	t.Run("success", func(t *testing.T) {
		if err := repo.ChangePassword(ctx, u.ID, "original1", "brandnew1"); err != nil {
			t.Fatalf("change password: %v", err)
		}
		if _, err := repo.Authenticate(ctx, "keys", "brandnew1"); err != nil {
			t.Fatalf("new password rejected: %v", err)
		}
	})
}
