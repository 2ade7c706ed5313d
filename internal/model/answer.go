package model

import "time"

// Answer is a single candidate response. Immutable once submitted: the
// engine only ever reads it. Audio and video payloads are optional; when
// absent the corresponding analyzers are skipped.
type Answer struct {
	ID           string       `json:"id" bson:"_id,omitempty"`
	SessionID    string       `json:"sessionId" bson:"sessionId"`
	Transcript   string       `json:"transcript" bson:"transcript"`
	AudioSamples []byte       `json:"-" bson:"audioSamples,omitempty"`
	VideoFrames  []byte       `json:"-" bson:"videoFrames,omitempty"`
	QuestionMeta QuestionMeta `json:"questionMeta" bson:"questionMeta"`
	SubmittedAt  time.Time    `json:"submittedAt" bson:"submittedAt"`
}

// HasAudio reports whether audio analysis applies to this answer.
func (a *Answer) HasAudio() bool { return len(a.AudioSamples) > 0 }

// HasVideo reports whether video analysis applies to this answer.
func (a *Answer) HasVideo() bool { return len(a.VideoFrames) > 0 }
