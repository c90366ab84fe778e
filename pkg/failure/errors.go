package failure

type Severity int

// Severity tells the scheduler whether a failure ends the run or only
// drops the URL that produced it.
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}

// Escalate wraps a classified error so it reports SeverityFatal while
// keeping the original error reachable through errors.As / errors.Is.
// The scheduler uses it for seed failures, which are fatal no matter how
// the producing package classified them.
func Escalate(err ClassifiedError) ClassifiedError {
	if err == nil {
		return nil
	}
	if err.Severity() == SeverityFatal {
		return err
	}
	return &escalated{err: err}
}

type escalated struct {
	err ClassifiedError
}

func (e *escalated) Error() string {
	return e.err.Error()
}

func (e *escalated) Severity() Severity {
	return SeverityFatal
}

func (e *escalated) Unwrap() error {
	return e.err
}
