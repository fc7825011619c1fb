package entity

import "time"

// ChatTurn is one stored conversation turn in a user's tutor history.
type ChatTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
