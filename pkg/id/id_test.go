package id

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUIDFromString(t *testing.T) {
	a := UUIDFromString("account:alice")
	b := UUIDFromString("account:alice")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, UUIDFromString("account:bob"))

	u, err := uuid.FromString(a)
	assert.NoError(t, err)
	assert.Equal(t, byte(3), u.Version())
}

func TestGenUUIDString(t *testing.T) {
	a := GenUUIDString()
	assert.True(t, IsUUID(a))
	assert.NotEqual(t, a, GenUUIDString())
	assert.False(t, IsUUID("fees"))
}

func TestLoanTraceID(t *testing.T) {
	a := LoanTraceID("eth", 1, "repay", 1600000000)
	assert.True(t, IsUUID(a))
	assert.Equal(t, a, LoanTraceID("eth", 1, "repay", 1600000000))
	assert.NotEqual(t, a, LoanTraceID("eth", 1, "repay", 1600000001))
	assert.NotEqual(t, a, LoanTraceID("eth", 2, "repay", 1600000000))
	assert.NotEqual(t, a, LoanTraceID("eth", 1, "draw", 1600000000))
}
