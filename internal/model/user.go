package model

import (
	"strings"
	"time"
)

// Role values carried in access tokens.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User is an account record keyed by lowercase email.
//
// Fields:
//  Email         – unique, lowercased; primary key.
//  FullName      – display name, prefilled at checkout.
//  Phone         – contact phone.
//  Address       – default delivery address.
//  PasswordHash  – bcrypt hash, never serialized.
//  IsAdmin       – administrator flag.
//  LoyaltyPoints – point balance, never below zero.
//  CreatedAt     – signup timestamp.
type User struct {
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	PasswordHash  string    `json:"-"`
	IsAdmin       bool      `json:"is_admin"`
	LoyaltyPoints int       `json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
}

// Role returns the token role for the user.
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

// NormalizeEmail lowercases and trims an email so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
