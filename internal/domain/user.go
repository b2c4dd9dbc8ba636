package domain

import "time"

type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleBrandOwner UserRole = "brand_owner"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Role         UserRole  `json:"role" gorm:"size:32"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Actor is the identity a request carries into core operations. The zero
// value is an anonymous caller.
type Actor struct {
	UserID int64
	Role   UserRole
}

func (a Actor) IsAnonymous() bool { return a.UserID == 0 }
func (a Actor) IsAdmin() bool     { return a.Role == RoleAdmin }
