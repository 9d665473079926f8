package models

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
}
