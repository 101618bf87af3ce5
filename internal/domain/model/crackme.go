package model

import (
	"time"
)

// Crackme is a reverse-engineering challenge uploaded for others to solve.
//
// Difficulty, Quality, NbSolutions and NbComments are denormalized: they are
// written only by the rating service, the recount worker and the consistency
// verifier, never directly by request handlers. Difficulty and Quality stay
// within [0,5] and are 0.0 while no ratings exist.
type Crackme struct {
	ID          string    `json:"id"`
	HexID       string    `json:"hexid"`
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Slug        string    `json:"slug"`
	Info        string    `json:"info" validate:"max=5000"`
	Lang        string    `json:"lang" validate:"required"`
	Arch        string    `json:"arch" validate:"required"`
	Platform    string    `json:"platform" validate:"required"`
	Author      string    `json:"author" validate:"required"`
	Difficulty  float64   `json:"difficulty"`
	Quality     float64   `json:"quality"`
	NbSolutions int       `json:"nb_solutions"`
	NbComments  int       `json:"nb_comments"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
