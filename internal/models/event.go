package models

import "time"

// Event represents a loggable action or alert in the system.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "article.create", "auth.login"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	ArticleID *string   `json:"articleId,omitempty"` // Nullable for system-wide events
	CreatedAt time.Time `json:"createdAt"`
}
