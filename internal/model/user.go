// Package model defines the domain records shared by storage, services and the API.
package model

import "time"

// User is an account that owns categories, projects, tasks and time entries.
type User struct {
	CreatedAt    time.Time `json:"createdAt"`
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
}
