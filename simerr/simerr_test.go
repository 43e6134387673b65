package simerr

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestModelFailureUnwraps(tst *testing.T) {
	chk.PrintTitle("simerr: ModelFailure unwrap")
	inner := errors.New("chi blew up")
	err := &ModelFailure{Kind: TransportModelKind, Err: inner}
	if !errors.Is(err, inner) {
		tst.Fatalf("expected errors.Is to find the wrapped model error")
	}
	if err.Error() == "" {
		tst.Fatalf("expected a non-empty message")
	}
}

func TestRetryExhaustedUnwraps(tst *testing.T) {
	chk.PrintTitle("simerr: RetryExhausted unwrap")
	fail := &SolverNonConvergence{SolverType: "linear", Iterations: 2, Residual: 0.5, FailureType: "max_iterations"}
	err := &RetryExhausted{StepIndex: 3, Time: 1.5, LastDt: 1e-5, DtMin: 2e-5, LastFailure: fail}
	if !errors.Is(err, fail) {
		tst.Fatalf("expected errors.Is to find the wrapped SolverNonConvergence")
	}
}

func TestInvariantViolationReportsReason(tst *testing.T) {
	chk.PrintTitle("simerr: InvariantViolation message")
	err := &InvariantViolation{Field: "Ne", Cell: 7, Reason: NonPositive, Value: -1, Dt: 1e-4, StepIndex: 9}
	msg := err.Error()
	if msg == "" {
		tst.Fatalf("expected a non-empty message")
	}
}

func TestModelKindString(tst *testing.T) {
	chk.PrintTitle("simerr: ModelKind.String")
	if TransportModelKind.String() != "transport" {
		tst.Fatalf("got %q", TransportModelKind.String())
	}
	if SourceModelKind.String() != "source" {
		tst.Fatalf("got %q", SourceModelKind.String())
	}
	if PedestalModelKind.String() != "pedestal" {
		tst.Fatalf("got %q", PedestalModelKind.String())
	}
}
