package model

// User is the role-joined projection of a row in the `users` table that
// the API returns. The stored password hash is deliberately not part of
// this struct so it can never leak into a response.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Username  string `json:"username"`
	RoleID    int64  `json:"role_id"`
	RoleName  string `json:"role_name"`
}
