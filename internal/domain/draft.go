package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// Draft is the single multi-step form document owned by one user.
type Draft struct {
	ID          int64
	UserID      string
	Steps       map[int]json.RawMessage
	ProfilePic  string
	IsSubmitted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StepIndexes returns the saved step indexes in ascending order.
func (d *Draft) StepIndexes() []int {
	out := make([]int, 0, len(d.Steps))
	for i := range d.Steps {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
