package exam

import "time"

// IsAvailable reports whether ex accepts new attempts at asOf. Either bound
// of the window may be absent.
func IsAvailable(ex Exam, asOf time.Time) bool {
	if ex.StartDate != nil && asOf.Before(*ex.StartDate) {
		return false
	}
	if ex.EndDate != nil && asOf.After(*ex.EndDate) {
		return false
	}
	return true
}
