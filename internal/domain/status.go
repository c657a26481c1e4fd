package domain

import "strings"

// Status is the lifecycle stage of a diary entry.
type Status int

const (
	StatusPlanned Status = iota + 1
	StatusWatching
	StatusWatched
)

const (
	LabelPlanned  = "planned"
	LabelWatching = "watching"
	LabelWatched  = "watched"
)

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusPlanned, StatusWatching, StatusWatched}
}

// ParseStatus maps a label to its status. Labels are matched after trimming
// and lower-casing.
func ParseStatus(label string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case LabelPlanned:
		return StatusPlanned, true
	case LabelWatching:
		return StatusWatching, true
	case LabelWatched:
		return StatusWatched, true
	}
	return 0, false
}

// StatusFromCode converts a stored status code. Unknown codes fall back to
// StatusPlanned so that corrupt rows still render.
func StatusFromCode(code int) Status {
	s := Status(code)
	if !s.Valid() {
		return StatusPlanned
	}
	return s
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s >= StatusPlanned && s <= StatusWatched
}

// Code is the persisted numeric form of the status.
func (s Status) Code() int {
	if !s.Valid() {
		return int(StatusPlanned)
	}
	return int(s)
}

func (s Status) String() string {
	switch s {
	case StatusWatching:
		return LabelWatching
	case StatusWatched:
		return LabelWatched
	default:
		return LabelPlanned
	}
}
