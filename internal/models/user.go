package models

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusDenied   UserStatus = "DENIED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusDenied:
		return true
	}
	return false
}

type User struct {
	ID                 string
	Email              string
	PasswordHash       []byte
	FirstName          string
	LastName           string
	School             string
	Phone              string
	AvatarURL          *string
	Role               Role
	Status             UserStatus
	ResetCodeHash      []byte
	ResetCodeExpiresAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Admin accounts live in their own table and are always APPROVED.
type Admin struct {
	ID           string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
