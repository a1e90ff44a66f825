package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	syncx "github.com/mind-engage/mindengage-exams/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	var passing sql.NullInt64
	if e.PassingScore != nil {
		passing = sql.NullInt64{Int64: int64(*e.PassingScore), Valid: true}
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,subject_id,title,description,duration_min,passing_score,max_attempts,
		randomize_questions,randomize_choices,show_feedback,start_at,end_at,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET subject_id=EXCLUDED.subject_id, title=EXCLUDED.title, description=EXCLUDED.description,
		duration_min=EXCLUDED.duration_min, passing_score=EXCLUDED.passing_score, max_attempts=EXCLUDED.max_attempts,
		randomize_questions=EXCLUDED.randomize_questions, randomize_choices=EXCLUDED.randomize_choices,
		show_feedback=EXCLUDED.show_feedback, start_at=EXCLUDED.start_at, end_at=EXCLUDED.end_at,
		questions_json=EXCLUDED.questions_json`,
		e.ID, e.SubjectID, e.Title, e.Description, e.DurationMin, passing, e.MaxAttempts,
		boolInt(e.RandomizeQuestions), boolInt(e.RandomizeChoices), boolInt(e.ShowFeedback),
		nullMillis(e.StartDate), nullMillis(e.EndDate), string(qj), e.CreatedAt)
	return err
}

const examColumns = `id,subject_id,title,description,duration_min,passing_score,max_attempts,
	randomize_questions,randomize_choices,show_feedback,start_at,end_at,questions_json,created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExam(row rowScanner) (Exam, error) {
	var (
		e              Exam
		passing        sql.NullInt64
		rq, rc, fb     int
		startAt, endAt sql.NullInt64
		qjson          string
	)
	if err := row.Scan(&e.ID, &e.SubjectID, &e.Title, &e.Description, &e.DurationMin, &passing, &e.MaxAttempts,
		&rq, &rc, &fb, &startAt, &endAt, &qjson, &e.CreatedAt); err != nil {
		return Exam{}, err
	}
	if passing.Valid {
		p := int(passing.Int64)
		e.PassingScore = &p
	}
	e.RandomizeQuestions, e.RandomizeChoices, e.ShowFeedback = rq != 0, rc != 0, fb != 0
	e.StartDate, e.EndDate = fromMillis(startAt), fromMillis(endAt)
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Exam{}, fmt.Errorf("decode questions: %w", err)
	}
	return e, nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := scanExam(s.db.QueryRowContext(ctx, `SELECT `+examColumns+` FROM exams WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, fmt.Errorf("exam %s: %w", id, ErrNotFound)
		}
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) DeleteExam(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]Exam, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(opts.Q)) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT `+examColumns+` FROM exams
		WHERE LOWER(title) LIKE $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		pattern, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendAttempt inserts the record and its AttemptSubmitted event atomically.
func (s *SQLStore) AppendAttempt(ctx context.Context, a Attempt) error {
	rj, err := json.Marshal(a.Responses)
	if err != nil {
		return err
	}
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return err
	}
	ev, err := json.Marshal(map[string]any{
		"exam_id": a.ExamID, "user_id": a.UserID, "score": a.Score, "total": a.Total,
		"timed_out": a.TimedOut, "submitted_at": a.SubmittedAt.UnixMilli(),
	})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO attempts (id,exam_id,exam_title,user_id,started_at,submitted_at,
		responses_json,questions_json,total,total_questions,score,correct,passing_score,timed_out)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		a.ID, a.ExamID, a.ExamTitle, a.UserID, a.StartedAt.UnixMilli(), a.SubmittedAt.UnixMilli(),
		string(rj), string(qj), a.Total, a.TotalQuestions, a.Score, a.Correct, a.PassingScore, boolInt(a.TimedOut)); err != nil {
		return err
	}
	if err := syncx.AppendWith(ctx, tx, syncx.Event{
		Type: syncx.TypeAttemptSubmitted, Key: a.ID, DataJSON: string(ev),
	}); err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) QueryAttempts(ctx context.Context, f AttemptFilter) ([]Attempt, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if f.ExamID != "" {
		args = append(args, f.ExamID)
		where = append(where, fmt.Sprintf("exam_id=$%d", len(args)))
	}
	q := `SELECT id,exam_id,exam_title,user_id,started_at,submitted_at,responses_json,questions_json,
		total,total_questions,score,correct,passing_score,timed_out FROM attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY submitted_at, id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var (
			a                  Attempt
			started, submitted int64
			rjson, qjson       string
			timedOut           int
		)
		if err := rows.Scan(&a.ID, &a.ExamID, &a.ExamTitle, &a.UserID, &started, &submitted, &rjson, &qjson,
			&a.Total, &a.TotalQuestions, &a.Score, &a.Correct, &a.PassingScore, &timedOut); err != nil {
			return nil, err
		}
		a.StartedAt, a.SubmittedAt = time.UnixMilli(started), time.UnixMilli(submitted)
		a.TimedOut = timedOut != 0
		if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil {
			return nil, fmt.Errorf("attempt %s responses: %w", a.ID, err)
		}
		if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
			return nil, fmt.Errorf("attempt %s snapshot: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id,name,email,role,pass_hash) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email, role=EXCLUDED.role, pass_hash=EXCLUDED.pass_hash`,
		u.ID, u.Name, strings.ToLower(u.Email), u.Role, u.PassHash)
	return err
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	return s.oneUser(ctx, `SELECT id,name,email,role,pass_hash FROM users WHERE id=$1`, id)
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (User, error) {
	return s.oneUser(ctx, `SELECT id,name,email,role,pass_hash FROM users WHERE email=$1`, strings.ToLower(email))
}

func (s *SQLStore) oneUser(ctx context.Context, q, key string) (User, error) {
	var u User
	if err := s.db.QueryRowContext(ctx, q, key).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PassHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, fmt.Errorf("user %s: %w", key, ErrNotFound)
		}
		return User{}, err
	}
	return u, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}
