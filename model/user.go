package model

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"sheabot/platform"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStd   Role = "user"
)

type User struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string     `gorm:"type:varchar(255);not null;unique" json:"username"`
	Email            string     `gorm:"type:varchar(255);not null;unique" json:"email"`
	Password         string     `gorm:"type:varchar(255);not null" json:"-"`
	Nickname         string     `json:"nickname"`
	Role             Role       `json:"role"`
	ResetToken       string     `gorm:"type:varchar(36);index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.Role = RoleStd
	return nil
}

// UserStore is the gorm-backed store for users.
type UserStore struct{}

func (UserStore) Create(user *User) error {
	db := platform.DB
	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (UserStore) GetByUsername(username string) (*User, error) {
	var user User
	db := platform.DB
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &user, nil
}

func (UserStore) GetByEmail(email string) (*User, error) {
	var user User
	db := platform.DB
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &user, nil
}

func (UserStore) Exists(username, email string) bool {
	var count int64
	db := platform.DB
	if err := db.Model(&User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		log.Printf("Failed to check user existence: %v", err)
		return false
	}
	return count > 0
}

func (UserStore) SetResetToken(userId uint, token string, expiry time.Time) error {
	db := platform.DB
	err := db.Model(&User{}).Where("id = ?", userId).Updates(map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (UserStore) GetByResetToken(token string) (*User, error) {
	var user User
	db := platform.DB
	if err := db.Where("reset_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reset token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &user, nil
}

// UpdatePassword stores the new hash and clears any outstanding reset token.
func (UserStore) UpdatePassword(userId uint, hashedPassword string) error {
	db := platform.DB
	err := db.Model(&User{}).Where("id = ?", userId).Updates(map[string]interface{}{
		"password":           hashedPassword,
		"reset_token":        "",
		"reset_token_expiry": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
