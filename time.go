package auth

import "time"

// IsWithinThresholdPeriod checks if the event time is still inside the
// window measured back from now.
func IsWithinThresholdPeriod(now, event time.Time, window time.Duration) bool {
	threshold := now.Add(-window)
	return event.After(threshold)
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(now, event time.Time, window time.Duration) bool {
	return !IsWithinThresholdPeriod(now, event, window)
}
