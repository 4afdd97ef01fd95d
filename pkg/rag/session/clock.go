package session

import "time"

// Clock abstracts wall-clock reads so tests can control elapsed time for the
// action validity and replay windows instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }
