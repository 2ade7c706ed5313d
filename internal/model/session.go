package model

import "time"

// SessionStatus values.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// Session is one interview run for one candidate. Stage state is mutated
// only through the interview service, which serializes writes per session.
type Session struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Role      string     `json:"role" bson:"role"`
	Company   string     `json:"company,omitempty" bson:"company,omitempty"`
	Industry  string     `json:"industry,omitempty" bson:"industry,omitempty"`
	Status    string     `json:"status" bson:"status"`
	Stage     StageState `json:"stage" bson:"stage"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}
