package jobs

import "fmt"

// JobAbortError reports a sweep that stopped before acting on any record.
type JobAbortError struct {
	Job string
	Err error
}

func (e *JobAbortError) Error() string {
	return fmt.Sprintf("%s aborted: %v", e.Job, e.Err)
}

func (e *JobAbortError) Unwrap() error {
	return e.Err
}
