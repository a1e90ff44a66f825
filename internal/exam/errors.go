package exam

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnavailable   = errors.New("exam is not currently available")
	ErrQuotaExceeded = errors.New("maximum number of attempts reached")
	ErrInvalidState  = errors.New("invalid session state")
	ErrPersistence   = errors.New("attempt could not be saved")
)

// QuotaError reports how many attempts were used against the limit.
type QuotaError struct {
	Used int
	Max  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s (%d/%d)", ErrQuotaExceeded.Error(), e.Used, e.Max)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }
