package pool

import "errors"

// Error definitions for zero-tolerance error handling. Every operation either
// completes fully or fails with one of these, with no partial state mutation.
var (
	// ErrUnsupportedSwapMode is returned for any swap request that is not an
	// exact-input swap.
	ErrUnsupportedSwapMode = errors.New("only exact-input swaps are supported")

	// ErrExceedsSlippageBound is returned when computed amounts exceed the
	// caller-specified maxima.
	ErrExceedsSlippageBound = errors.New("computed amounts exceed slippage bound")

	// ErrInsufficientTrancheBalance is returned when a burn exceeds the
	// caller's held tranche units.
	ErrInsufficientTrancheBalance = errors.New("insufficient tranche unit balance")

	// ErrPrincipalUnderflow is returned when a withdrawal would push the
	// tracked tranche principal below zero.
	ErrPrincipalUnderflow = errors.New("withdrawal exceeds tranche principal")

	// ErrUnauthorizedCaller is returned when a privileged operation is
	// invoked by a caller outside the strategy set.
	ErrUnauthorizedCaller = errors.New("caller is not authorized")

	ErrMarketNotFound = errors.New("market not found")
	ErrMarketExists   = errors.New("market already exists")
	ErrInvalidAmount  = errors.New("invalid amount")
)
