package repository

import (
	"context"
	"database/sql"
	"errors"

	"usercms/internal/database"
	"usercms/internal/model"
	"usercms/internal/utils"
)

// UserRepo provides CRUD and credential checks over the users table.
// All read projections join the role name in and never carry the stored
// password hash.
type UserRepo struct {
	Store      *database.Store
	BcryptCost int
}

func NewUserRepo(store *database.Store, bcryptCost int) *UserRepo {
	return &UserRepo{Store: store, BcryptCost: bcryptCost}
}

// UserInput carries the writable fields of a user. RoleID zero means
// "not supplied" and falls back to model.FallbackRoleID.
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Address   string
	Phone     string
	Username  string
	Password  string
	RoleID    int64
}

const userSelect = `
	SELECT users.id, users.first_name, users.last_name, users.email,
	       users.address, users.phone, users.username, users.role_id,
	       roles.name AS role_name
	FROM users
	LEFT JOIN roles ON users.role_id = roles.id`

const userAuthSelect = `
	SELECT users.id, users.first_name, users.last_name, users.email,
	       users.address, users.phone, users.username, users.role_id,
	       roles.name AS role_name, users.password_hash
	FROM users
	LEFT JOIN roles ON users.role_id = roles.id`

// Authenticate verifies a username/password pair and returns the
// role-joined user. An unknown username and a wrong password produce the
// same error so the caller cannot probe for valid usernames.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	row := r.Store.DB.QueryRowContext(ctx,
		userAuthSelect+" WHERE users.username = ?", username)
	var hash string
	u, err := scanUser(row, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if !utils.VerifyPassword(hash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// List returns all users ordered by id ascending.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.Store.DB.QueryContext(ctx, userSelect+" ORDER BY users.id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows, nil)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID fetches a single user or ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	row := r.Store.DB.QueryRowContext(ctx, userSelect+" WHERE users.id = ?", id)
	u, err := scanUser(row, nil)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create validates and inserts a new user, hashing the password before
// it is stored. Email and username uniqueness is ultimately enforced by
// the unique indexes; a violation surfaces as ErrDuplicateUser.
func (r *UserRepo) Create(ctx context.Context, in UserInput) (model.User, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return model.User{}, validationf("Missing required fields")
	}
	if len(in.Password) < utils.MinPasswordLen {
		return model.User{}, validationf("Password must be at least 6 characters long")
	}

	hash, err := utils.HashPassword(in.Password, r.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	roleID := in.RoleID
	if roleID == 0 {
		roleID = model.FallbackRoleID
	}

	res, err := r.Store.DB.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, address, phone, username, password_hash, role_id)
		 VALUES (?,?,?,?,?,?,?,?)`,
		in.FirstName, in.LastName, in.Email, in.Address, in.Phone, in.Username, hash, roleID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.User{}, ErrDuplicateUser
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Update replaces a user's profile fields. The password is only touched
// when one is supplied. An omitted role id resets the user to
// model.FallbackRoleID; see the constant for why that is deliberate.
func (r *UserRepo) Update(ctx context.Context, id int64, in UserInput) (model.User, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Username == "" {
		return model.User{}, validationf("Missing required fields")
	}
	roleID := in.RoleID
	if roleID == 0 {
		roleID = model.FallbackRoleID
	}

	query := `UPDATE users SET first_name = ?, last_name = ?, email = ?, address = ?, phone = ?, username = ?, role_id = ?`
	args := []any{in.FirstName, in.LastName, in.Email, in.Address, in.Phone, in.Username, roleID}

	if in.Password != "" {
		if len(in.Password) < utils.MinPasswordLen {
			return model.User{}, validationf("Password must be at least 6 characters long")
		}
		hash, err := utils.HashPassword(in.Password, r.BcryptCost)
		if err != nil {
			return model.User{}, err
		}
		query += `, password_hash = ?`
		args = append(args, hash)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := r.Store.DB.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return model.User{}, ErrDuplicateUser
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user by id. Deleting an id that does not exist is
// not an error.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.Store.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	return err
}

// ChangePassword verifies the current password and replaces the stored
// hash with one derived from the new password.
func (r *UserRepo) ChangePassword(ctx context.Context, id int64, current, next string) error {
	if len(next) < utils.MinPasswordLen {
		return validationf("New password must be at least 6 characters long")
	}

	var hash string
	err := r.Store.DB.QueryRowContext(ctx,
		"SELECT password_hash FROM users WHERE id = ?", id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(hash, current) {
		return ErrInvalidCredentials
	}

	newHash, err := utils.HashPassword(next, r.BcryptCost)
	if err != nil {
		return err
	}
	_, err = r.Store.DB.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", newHash, id)
	return err
}

func scanUser(row rowScanner, hash *string) (model.User, error) {
	var (
		u        model.User
		address  sql.NullString
		phone    sql.NullString
		roleID   sql.NullInt64
		roleName sql.NullString
	)
	dest := []any{&u.ID, &u.FirstName, &u.LastName, &u.Email,
		&address, &phone, &u.Username, &roleID, &roleName}
	if hash != nil {
		dest = append(dest, hash)
	}
	if err := row.Scan(dest...); err != nil {
		return model.User{}, err
	}
	u.Address = address.String
	u.Phone = phone.String
	u.RoleID = roleID.Int64
	u.RoleName = roleName.String
	return u, nil
}
