package domain

import "errors"

var (
	// ErrNotReady is returned when Advance or Submit is attempted without a satisfied precondition.
	ErrNotReady = errors.New("current step has no answer")

	// ErrWrongStepKind is returned when a choice operation targets an input step, or vice versa.
	ErrWrongStepKind = errors.New("operation not valid for current step kind")

	// ErrUnknownOption is returned when the selected option is not offered by the current step.
	ErrUnknownOption = errors.New("unknown option")

	// ErrUnknownField is returned when a field key does not belong to the current step.
	ErrUnknownField = errors.New("unknown field")

	// ErrNotFinalStep is returned when Submit is called before the last step.
	ErrNotFinalStep = errors.New("submission is only possible from the last step")

	// ErrSubmissionInFlight is returned while a submission is pending.
	ErrSubmissionInFlight = errors.New("submission already in flight")

	// ErrCompleted is returned for any transition after the lead was accepted.
	ErrCompleted = errors.New("funnel already completed")

	// ErrInvalidState is returned when a state does not match its funnel.
	ErrInvalidState = errors.New("invalid state")

	// ErrMisconfigured is wrapped by submitters whose destination is not configured.
	ErrMisconfigured = errors.New("submission destination not configured")

	// ErrFunnelNotFound is returned when a funnel ID cannot be resolved by a loader.
	ErrFunnelNotFound = errors.New("funnel not found")
)
