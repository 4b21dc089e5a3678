package models

import "time"

const (
	RolAdmin      = "admin"
	RolVisualizer = "visualizer"
)

// Usuario is an account allowed to use the API.
type Usuario struct {
	ID                  uint       `json:"id" gorm:"primaryKey;column:id"`
	Username            string     `json:"username" gorm:"column:username;size:255;uniqueIndex;not null"`
	Email               string     `json:"email,omitempty" gorm:"column:email;size:255;index"`
	Password            string     `json:"-" gorm:"column:password;size:255;not null"`
	Role                string     `json:"role" gorm:"column:role;size:32;not null;default:'visualizer'"`
	ResetToken          *string    `json:"-" gorm:"column:reset_token;size:128;index"`
	ResetTokenExpiresAt *time.Time `json:"-" gorm:"column:reset_token_expires_at"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Usuario) TableName() string {
	return "users"
}

type LoginRequest struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	CaptchaToken string `json:"captchaToken"`
	RememberMe   bool   `json:"rememberMe"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=4"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=4"`
}
