package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Username      string `gorm:"column:username;unique;not null" json:"username"`
	Email         string `gorm:"column:email;unique;not null" json:"email"`
	Password      string `gorm:"column:password;not null" json:"-"`
	Address       string `gorm:"column:address" json:"address"`
	ContactNumber string `gorm:"column:contact_number" json:"contact_number"`
	Role          string `gorm:"column:role;default:customer" json:"role"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
