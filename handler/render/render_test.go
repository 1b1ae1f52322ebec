package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"multicollateral/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapResponse(t *testing.T) {
	h := WrapResponse(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, H{"pool": "eth"})
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"pool":"eth"}}`, rec.Body.String())
}

func TestError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{core.ErrCeilingExceeded, http.StatusPreconditionFailed, 100204},
		{core.ErrInputInvalid, http.StatusBadRequest, 100100},
		{core.ErrLoanNotFound, http.StatusNotFound, 100103},
		{errors.New("db down"), http.StatusInternalServerError, 500},
	}

	for _, c := range cases {
		h := WrapResponse(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Error(w, c.err)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, c.status, rec.Code, c.err.Error())

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, c.code, resp.Code)
	}
}
