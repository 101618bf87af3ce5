package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	HexID          string    `json:"hexid"`
	Name           string    `json:"name" validate:"required,min=3,max=50,username"`
	Email          string    `json:"email" validate:"required,email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	NbCrackmes     int       `json:"nb_crackmes"`
	NbSolutions    int       `json:"nb_solutions"`
	NbComments     int       `json:"nb_comments"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
