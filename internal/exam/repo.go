package exam

import "context"

type AttemptFilter struct {
	UserID string // optional
	ExamID string // optional
}

// AttemptRepository is the append-only home of finalized attempts.
type AttemptRepository interface {
	AppendAttempt(ctx context.Context, a Attempt) error
	QueryAttempts(ctx context.Context, f AttemptFilter) ([]Attempt, error)
}

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

type Store interface {
	AttemptRepository

	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error) // full exam, answer keys included
	DeleteExam(ctx context.Context, id string) error
	ListExams(ctx context.Context, opts ListOpts) ([]Exam, error)

	PutUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
}
