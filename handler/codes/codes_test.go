package codes

import (
	"errors"
	"fmt"
	"testing"

	"multicollateral/core"

	"github.com/stretchr/testify/assert"
	"github.com/twitchtv/twirp"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		err  error
		code twirp.ErrorCode
		num  int
	}{
		{core.ErrLoanNotFound, twirp.NotFound, 100103},
		{fmt.Errorf("ETH: %w", core.ErrStalePrice), twirp.Unavailable, 100200},
		{core.ErrRatioViolation, twirp.FailedPrecondition, 100201},
		{core.ErrCurrencyNotAllowed, twirp.InvalidArgument, 100101},
		{core.ErrOperationForbidden, twirp.PermissionDenied, 100001},
		{errors.New("boom"), twirp.Internal, 500},
		{twirp.InvalidArgumentError("amount", "required"), twirp.InvalidArgument, InvalidArguments},
	}

	for _, c := range cases {
		twerr := From(c.err)
		assert.Equal(t, c.code, twerr.Code(), c.err.Error())
		assert.Equal(t, c.num, Get(twerr), c.err.Error())
	}
}
