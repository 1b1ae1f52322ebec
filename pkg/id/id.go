package id

import (
	"crypto/md5"
	"io"
	"strconv"

	"github.com/gofrs/uuid"
)

// GenUUIDString new uuid
func GenUUIDString() string {
	return uuid.Must(uuid.NewV4()).String()
}

// UUIDFromString new uuid string from string, same text gives the same id
func UUIDFromString(text string) string {
	h := md5.New()
	_, _ = io.WriteString(h, text)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}

// LoanTraceID trace id of an operation on a loan at unix second at, the same
// operation in the same second gives the same id
func LoanTraceID(poolID string, loanID uint64, op string, at int64) string {
	return UUIDFromString(poolID + ":" + strconv.FormatUint(loanID, 10) + ":" + op + ":" + strconv.FormatInt(at, 10))
}

// IsUUID whether s is a well formed uuid
func IsUUID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
