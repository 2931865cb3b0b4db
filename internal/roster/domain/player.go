package roster

import "time"

// Player is a club member eligible to appear in matches.
type Player struct {
	ID       string
	Name     string
	Active   bool
	JoinedAt time.Time
}
