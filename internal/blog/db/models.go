package db

import (
	"time"
)

type Post struct {
	ID      int64
	Title   string
	Content string
	PubDate time.Time
}

type Session struct {
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
}
