package core

import "github.com/google/uuid"

// NewMeetingID generates the identifier under which all artifacts of one
// uploaded audio file are keyed.
func NewMeetingID() string {
	return uuid.NewString()
}
