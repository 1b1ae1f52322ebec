package codes

import (
	"errors"
	"strconv"

	"multicollateral/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// From converts an engine error into a twirp error carrying its code
func From(err error) twirp.Error {
	if twerr, ok := err.(twirp.Error); ok {
		return twerr
	}

	var code core.ErrorCode
	if !errors.As(err, &code) {
		return twirp.InternalErrorWith(err)
	}

	var twcode twirp.ErrorCode
	switch code {
	case core.ErrPoolNotFound, core.ErrLoanNotFound:
		twcode = twirp.NotFound
	case core.ErrOperationForbidden:
		twcode = twirp.PermissionDenied
	case core.ErrSuspended, core.ErrPoolInactive, core.ErrStalePrice:
		twcode = twirp.Unavailable
	default:
		if code.IsInputError() {
			twcode = twirp.InvalidArgument
		} else {
			twcode = twirp.FailedPrecondition
		}
	}

	return twirp.NewError(twcode, err.Error()).WithMeta(CustomCodeKey, code.String())
}

// Get get error code
func Get(err twirp.Error) int {
	if v := err.Meta(CustomCodeKey); v != "" {
		if code, e := strconv.Atoi(v); e == nil {
			return code
		}
	}

	switch err.Code() {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(err.Code())
	}
}
