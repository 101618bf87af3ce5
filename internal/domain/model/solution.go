package model

import "time"

// Solution is a write-up submitted against a crackme. It references the
// crackme by internal key, unlike comments and ratings which use the hexid.
type Solution struct {
	ID        string    `json:"id"`
	HexID     string    `json:"hexid"`
	CrackmeID string    `json:"crackme_id" validate:"required"`
	Info      string    `json:"info" validate:"required,min=10,max=5000"`
	Author    string    `json:"author" validate:"required"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Joined for display
	CrackmeHexID string `json:"crackme_hexid,omitempty"`
	CrackmeName  string `json:"crackme_name,omitempty"`
}
