package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserId = uuid.UUID

type User struct {
	Id           UserId     `json:"id"`
	UserName     string     `json:"userName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Avatar       *uuid.UUID `json:"avatar,omitempty"`
	Created      time.Time  `json:"created"`
	Updated      time.Time  `json:"updated"`
}
