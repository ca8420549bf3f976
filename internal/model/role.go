package model

import "time"

// Role IDs the rest of the application relies on. Seeding inserts the
// default roles in a fixed order so that admin lands on id 1 and viewer
// on id 4; these constants are the single place that ordinal coupling
// lives. A future change can resolve roles by name instead.
const (
	AdminRoleID  int64 = 1
	ViewerRoleID int64 = 4

	// FallbackRoleID is assigned when a create or update request carries
	// no role_id. Note that this applies to updates too: saving a user
	// without an explicit role reassigns them to viewer.
	FallbackRoleID = ViewerRoleID
)

// Role is a row in the `roles` table.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultRoles are seeded into an empty roles table, in this exact order.
var DefaultRoles = []Role{
	{Name: "admin", Description: "Full system access with all permissions"},
	{Name: "manager", Description: "Can manage users and content"},
	{Name: "editor", Description: "Can edit content but not manage users"},
	{Name: "viewer", Description: "Read-only access"},
}
