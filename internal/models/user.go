package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSchool   UserRole = "SCHOOL"
	RoleSupplier UserRole = "SUPPLIER"
	RoleAdmin    UserRole = "ADMIN"
)

// User represents an application user stored in the users table.
// Suppliers must be verified before they may submit offers or receive
// new-bid notifications.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	Verified     bool      `db:"verified" json:"verified"`
	Active       bool      `db:"active" json:"active"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SupplierContact is the slim projection used for notification fan-out.
type SupplierContact struct {
	ID       string `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
