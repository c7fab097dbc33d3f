package api

import "github.com/google/uuid"

// Request DTOs

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// TokenRequest is read from a form-encoded body
type TokenRequest struct {
	GrantType    string `validate:"required,oneof=password refresh_token"`
	UserName     string `validate:"required_if=GrantType password"`
	Password     string `validate:"required_if=GrantType password"`
	RefreshToken string `validate:"required_if=GrantType refresh_token"`
}

type ResetPasswordLinkRequest struct {
	UserName string `json:"userName" validate:"required"`
}

type ResetPasswordRequest struct {
	UserId   uuid.UUID `json:"userId" validate:"required"`
	Token    string    `json:"token" validate:"required"`
	Password string    `json:"password" validate:"required,min=8,max=100"`
}

// Response DTOs

type RegisterResponse struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type UserProfileResponse struct {
	Id     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Avatar *uuid.UUID `json:"avatar,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
