package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"usercms/internal/database"
	"usercms/internal/model"
)

// RoleRepo provides CRUD over the roles table.
type RoleRepo struct {
	Store *database.Store
}

func NewRoleRepo(store *database.Store) *RoleRepo { return &RoleRepo{Store: store} }

const roleColumns = "id, name, description, created_at, updated_at"

// List returns all roles ordered by id ascending.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.Store.DB.QueryContext(ctx,
		"SELECT "+roleColumns+" FROM roles ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []model.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetByID fetches a single role or ErrNotFound.
func (r *RoleRepo) GetByID(ctx context.Context, id int64) (model.Role, error) {
	row := r.Store.DB.QueryRowContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE id = ?", id)
	role, err := scanRole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// Create inserts a new role. The name is trimmed before validation and
// storage; the comparison against existing names is case-sensitive.
func (r *RoleRepo) Create(ctx context.Context, name, description string) (model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Role{}, validationf("Role name is required")
	}

	// Pre-check for a friendly error; the unique index is the backstop.
	var existing int64
	err := r.Store.DB.QueryRowContext(ctx,
		"SELECT id FROM roles WHERE name = ?", name).Scan(&existing)
	if err == nil {
		return model.Role{}, ErrDuplicateRole
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, err
	}

	now := time.Now().UTC()
	res, err := r.Store.DB.ExecContext(ctx,
		"INSERT INTO roles (name, description, created_at, updated_at) VALUES (?,?,?,?)",
		name, description, now, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.Role{}, ErrDuplicateRole
		}
		return model.Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	return r.GetByID(ctx, id)
}

// Update renames a role and replaces its description, bumping updated_at.
func (r *RoleRepo) Update(ctx context.Context, id int64, name, description string) (model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Role{}, validationf("Role name is required")
	}

	var existing int64
	err := r.Store.DB.QueryRowContext(ctx,
		"SELECT id FROM roles WHERE id = ?", id).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.Role{}, err
	}

	err = r.Store.DB.QueryRowContext(ctx,
		"SELECT id FROM roles WHERE name = ? AND id != ?", name, id).Scan(&existing)
	if err == nil {
		return model.Role{}, ErrDuplicateRole
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, err
	}

	_, err = r.Store.DB.ExecContext(ctx,
		"UPDATE roles SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		name, description, time.Now().UTC(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.Role{}, ErrDuplicateRole
		}
		return model.Role{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a role. The reserved admin role is never deletable, and
// a role still referenced by users must be released first.
func (r *RoleRepo) Delete(ctx context.Context, id int64) error {
	if id == model.AdminRoleID {
		return ErrAdminRoleProtected
	}

	var inUse int
	if err := r.Store.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role_id = ?", id).Scan(&inUse); err != nil {
		return err
	}
	if inUse > 0 {
		return ErrRoleInUse
	}

	_, err := r.Store.DB.ExecContext(ctx, "DELETE FROM roles WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (model.Role, error) {
	var (
		role model.Role
		desc sql.NullString
	)
	err := row.Scan(&role.ID, &role.Name, &desc, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return model.Role{}, err
	}
	role.Description = desc.String
	return role, nil
}
