package model

import (
	"errors"

	"sheabot/platform"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

func InstallDB() {
	db := platform.DB
	if err := db.AutoMigrate(
		&User{},
		&Conversation{},
		&Message{},
		&FAQ{}); err != nil {
		panic(err)
	}
}
