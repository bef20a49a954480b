package domain

import "time"

// FAQ is a published question/answer pair. It has its own lifecycle, independent
// of tickets.
type FAQ struct {
	ID              string
	Question        string
	Answer          string
	Category        string
	Tags            []string
	HelpfulCount    int
	NotHelpfulCount int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
