package model

import "time"

type Comment struct {
	ID           string    `json:"id"`
	CrackmeHexID string    `json:"crackme_hexid" validate:"required"`
	Author       string    `json:"author" validate:"required"`
	Info         string    `json:"info" validate:"required,min=3,max=1000"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`

	// Sanitized HTML rendering of Info, filled on read.
	HTML string `json:"html,omitempty"`
}
