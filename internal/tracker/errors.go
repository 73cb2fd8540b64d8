package tracker

import "errors"

// Callers classify failures with errors.Is against these.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNoActiveSession    = errors.New("no active session")
	ErrPomodoroNotRunning = errors.New("no running pomodoro")
	ErrIO                 = errors.New("i/o error")
)
