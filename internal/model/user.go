package model

import "time"

type Role string

const (
	RoleStudent    Role = "student"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"role"`
	TelegramChatID *int64    `json:"telegram_chat_id"` // nil = no Telegram relay for this user
	CreatedAt      time.Time `json:"created_at"`
}

// FullName returns the display name used in staff notifications
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
