package repository

import "time"

// Cutscene is a stored cutscene as listed by the browser.
type Cutscene struct {
	ID         string
	Name       string
	TokenCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
