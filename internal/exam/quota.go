package exam

// AttemptsUsed counts the records belonging to userID for examID.
func AttemptsUsed(records []Attempt, userID, examID string) int {
	n := 0
	for _, r := range records {
		if r.UserID == userID && r.ExamID == examID {
			n++
		}
	}
	return n
}

// CanStart reports whether another attempt fits the exam's quota.
func CanStart(ex Exam, used int) bool {
	return ex.MaxAttempts == 0 || used < ex.MaxAttempts
}
