package domain

import "time"

// User represents an account within the platform. Credits gate access to the
// transformation pipeline: every user gets one complimentary transformation
// plus one follow-up edit, everything beyond that consumes paid credits.
type User struct {
	ID              int64
	Email           string
	FreeCreditsUsed bool
	PaidCredits     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Credits is the ledger snapshot exposed to clients.
type Credits struct {
	FreeCreditsUsed bool `json:"freeCreditsUsed"`
	PaidCredits     int  `json:"paidCredits"`
}

// CanTransform reports whether the user may start the described operation.
// The first transformation and the first edit of an existing transformation
// are free; everything else requires a positive paid balance.
func (c Credits) CanTransform(isEdit bool, editsUsed int) bool {
	if IsFreeOperation(c.FreeCreditsUsed, isEdit, editsUsed) {
		return true
	}
	return c.PaidCredits > 0
}

// IsFreeOperation reports whether the operation falls inside the free
// allotment and therefore must not touch the paid balance.
func IsFreeOperation(freeCreditsUsed, isEdit bool, editsUsed int) bool {
	if isEdit {
		return editsUsed == 0
	}
	return !freeCreditsUsed
}
