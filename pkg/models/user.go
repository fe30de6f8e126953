package models

import "time"

type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

const (
	UserActive  = "active"
	UserBlocked = "blocked"
)

type User struct {
	ID         int64     `json:"id"`
	TelegramID *int64    `json:"telegram_id"`
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Actor is the request-scoped identity handed to every core call.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func (a Actor) IsClient() bool { return a.Role == RoleClient }
func (a Actor) IsDriver() bool { return a.Role == RoleDriver }
func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
