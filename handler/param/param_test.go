package param

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loanQuery struct {
	Account string `json:"account" valid:"required"`
	Limit   int    `json:"limit"`
}

func TestBindingQuery(t *testing.T) {
	var params loanQuery
	r := httptest.NewRequest(http.MethodGet, "/loans?account=alice&limit=5&extra=1", nil)
	require.NoError(t, Binding(r, &params))
	assert.Equal(t, "alice", params.Account)
	assert.Equal(t, 5, params.Limit)

	var empty loanQuery
	r = httptest.NewRequest(http.MethodGet, "/loans", nil)
	assert.Error(t, Binding(r, &empty))
}

func TestBindingBody(t *testing.T) {
	var body struct {
		Currency string          `json:"currency" valid:"required"`
		Amount   decimal.Decimal `json:"amount"`
	}

	r := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(`{"currency":"sUSD","amount":"12.5"}`))
	require.NoError(t, Binding(r, &body))
	assert.Equal(t, "sUSD", body.Currency)
	assert.Equal(t, "12.5", body.Amount.String())

	r = httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(`{"amount":`))
	assert.Error(t, Binding(r, &body))
}
