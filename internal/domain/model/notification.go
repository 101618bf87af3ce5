package model

import "time"

type Notification struct {
	ID        string    `json:"id"`
	HexID     string    `json:"hexid"`
	UserName  string    `json:"user_name"`
	Text      string    `json:"text"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}
