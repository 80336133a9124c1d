package domain

import "fmt"

// FailureKind classifies failures that are recovered locally and never
// propagated past the core boundary.
type FailureKind int

const (
	FailurePersistence FailureKind = iota + 1
	FailureRemoteFetch
	FailureMalformedCredential
)

func (k FailureKind) String() string {
	switch k {
	case FailurePersistence:
		return "persistence"
	case FailureRemoteFetch:
		return "remote_fetch"
	case FailureMalformedCredential:
		return "malformed_credential"
	default:
		return "unknown"
	}
}

// Failure is a swallowed error together with the operation that produced it.
type Failure struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Kind, f.Op, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// FailureReporter receives swallowed failures. Implementations must be
// safe for concurrent use.
type FailureReporter func(Failure)

// Report calls r if it is set.
func (r FailureReporter) Report(kind FailureKind, op string, err error) {
	if r != nil && err != nil {
		r(Failure{Kind: kind, Op: op, Err: err})
	}
}
