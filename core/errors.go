package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden, e.g. closing someone else's loan
	ErrOperationForbidden ErrorCode = 100001

	// ErrInputInvalid zero/negative amount, malformed request
	ErrInputInvalid ErrorCode = 100100
	// ErrCurrencyNotAllowed currency not lendable by the pool
	ErrCurrencyNotAllowed ErrorCode = 100101
	// ErrPoolNotFound no pool
	ErrPoolNotFound ErrorCode = 100102
	// ErrLoanNotFound no loan
	ErrLoanNotFound ErrorCode = 100103
	// ErrLoanClosed loan already closed
	ErrLoanClosed ErrorCode = 100104
	// ErrInsufficientCollateral withdraw more than locked
	ErrInsufficientCollateral ErrorCode = 100105
	// ErrInsufficientBalance ledger or vault balance too low
	ErrInsufficientBalance ErrorCode = 100106

	// ErrStalePrice oracle reported a stale rate
	ErrStalePrice ErrorCode = 100200
	// ErrRatioViolation result would be below the minimum collateral ratio
	ErrRatioViolation ErrorCode = 100201
	// ErrBelowMinimumSize loan or remaining balance under the floor
	ErrBelowMinimumSize ErrorCode = 100202
	// ErrNotUndercollateralized liquidation on a healthy loan
	ErrNotUndercollateralized ErrorCode = 100203
	// ErrCeilingExceeded mint would push aggregate debt past the ceiling
	ErrCeilingExceeded ErrorCode = 100204
	// ErrInteractionTooSoon interaction delay not elapsed
	ErrInteractionTooSoon ErrorCode = 100205
	// ErrSuspended system or pool suspended
	ErrSuspended ErrorCode = 100206

	// ErrPoolInactive pool not registered with the manager
	ErrPoolInactive ErrorCode = 100300
	// ErrPoolHasOpenLoans pool can't be removed while loans are open
	ErrPoolHasOpenLoans ErrorCode = 100301
	// ErrInvalidPoolParams pool configuration breaks the ratio/penalty invariant
	ErrInvalidPoolParams ErrorCode = 100302
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:                "unknown",
	ErrOperationForbidden:     "operation forbidden",
	ErrInputInvalid:           "invalid input",
	ErrCurrencyNotAllowed:     "currency not allowed",
	ErrPoolNotFound:           "pool not found",
	ErrLoanNotFound:           "loan not found",
	ErrLoanClosed:             "loan closed",
	ErrInsufficientCollateral: "insufficient collateral",
	ErrInsufficientBalance:    "insufficient balance",
	ErrStalePrice:             "stale price",
	ErrRatioViolation:         "collateral ratio below minimum",
	ErrBelowMinimumSize:       "below minimum loan size",
	ErrNotUndercollateralized: "loan not undercollateralized",
	ErrCeilingExceeded:        "debt ceiling exceeded",
	ErrInteractionTooSoon:     "interaction too soon",
	ErrSuspended:              "suspended",
	ErrPoolInactive:           "pool inactive",
	ErrPoolHasOpenLoans:       "pool has open loans",
	ErrInvalidPoolParams:      "invalid pool params",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}

	return e.String()
}

// IsInputError reports whether the code belongs to the input validation group
func (e ErrorCode) IsInputError() bool {
	return e >= ErrInputInvalid && e < ErrStalePrice
}
