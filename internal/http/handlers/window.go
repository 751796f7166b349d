package handlers

import "time"

// validWindow checks start/end after a partial update is applied. rawEnd follows
// the update convention: nil keeps the stored end, "" clears it.
func validWindow(start time.Time, newStart *time.Time, end *time.Time, rawEnd *string) bool {
	if newStart != nil {
		start = *newStart
	}
	if rawEnd != nil {
		if *rawEnd == "" {
			return true
		}
		t, err := time.Parse(time.RFC3339, *rawEnd)
		if err != nil {
			return false
		}
		end = &t
	}
	return end == nil || !end.Before(start)
}
