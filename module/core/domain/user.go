package domain

import "time"

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// TrackedUser is a directory entry: a registered user and the last position
// the tracking pipeline submitted for them.
type TrackedUser struct {
	User         User        `json:"user"`
	LastPosition *Coordinate `json:"position"`
	CreatedAt    time.Time   `json:"created_at"`
}
