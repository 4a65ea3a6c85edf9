package models

import "time"

// Article represents a published article. UserID is the owning user and is
// assigned from the authenticated principal at creation time; it is never
// accepted from a request payload.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
