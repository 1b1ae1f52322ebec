package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multicollateral/core"
	"multicollateral/pkg/concurrency"
	"multicollateral/pkg/number"
	"multicollateral/service/manager"
	"multicollateral/service/oracle"
	"multicollateral/service/pool"
	"multicollateral/service/status"
	"multicollateral/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
}

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	ctx := context.Background()
	db := memory.New()
	lane := concurrency.NewLane()
	tx := db.Transactor()

	cfg := &core.Config{
		Admins: []string{"root"},
		Accounts: map[string]string{
			"root-key":  "root",
			"alice-key": "alice",
		},
	}

	properties := db.Properties()
	statuses := status.New(properties)
	managers := manager.New(db.Manager(), db.Balances(), properties, tx, lane, core.ManagerSettings{
		DebtCeiling:   number.Decimal("1000000"),
		ShortBaseRate: number.Decimal("0.05"),
		ShortSlope:    number.Decimal("0.5"),
	})
	prices := oracle.NewOracle(db.Prices(), "sUSD", time.Hour)
	require.NoError(t, db.Prices().Create(ctx, &core.Price{Currency: "ETH", Price: number.Decimal("2000")}))

	pools := pool.NewDirectory(db.Pools(), managers, tx, lane, func(poolID string) core.PoolService {
		return pool.New(poolID, db.Pools(), db.Loans(), db.Indexes(), managers, prices,
			db.Balances(), db.Balances(), db.Fees(), statuses, tx, lane)
	})

	srv := New(cfg, pools, managers, db.Balances(), db.Fees(), statuses, tx, lane)
	ts := &testServer{t: t, srv: httptest.NewServer(srv.HandleRestAPI())}
	t.Cleanup(ts.srv.Close)
	return ts
}

func (s *testServer) do(method, path, key, body string, out interface{}) int {
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	require.NoError(s.t, err)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	var env envelope
	require.NoError(s.t, json.Unmarshal(b, &env), string(b))
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}

	if out, ok := out.(*envelope); ok {
		*out = env
	}

	return resp.StatusCode
}

const ethPool = `{
	"id": "eth",
	"kind": "native",
	"collateral_currency": "ETH",
	"currencies": ["sUSD"],
	"min_collateral_ratio": "1.5",
	"min_loan_size": "10",
	"liquidation_penalty": "0.1"
}`

func TestLoanLifecycle(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/pools", "alice-key", ethPool, nil))
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pools", "root-key", ethPool, nil))
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/balances/mint", "root-key",
		`{"account":"alice","currency":"ETH","amount":"2"}`, nil))

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/pools/eth/loans", "",
		`{"collateral":"1","amount":"1000","currency":"sUSD"}`, nil))

	var loan core.Loan
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pools/eth/loans", "alice-key",
		`{"collateral":"1","amount":"1000","currency":"sUSD"}`, &loan))
	assert.Equal(t, uint64(1), loan.ID)
	assert.Equal(t, "alice", loan.Account)

	var rejected envelope
	assert.Equal(t, http.StatusPreconditionFailed, s.do(http.MethodPost, "/pools/eth/loans/1/draw", "alice-key",
		`{"amount":"1000"}`, &rejected))
	assert.Equal(t, int(core.ErrRatioViolation), rejected.Code)

	var pos core.Position
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/pools/eth/loans/1", "", "", &pos))
	assert.Equal(t, "2", pos.Ratio.String())
	assert.Equal(t, "333.333333333333333333", pos.MaxBorrowable.String())

	var loans []*core.Loan
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/pools/eth/loans?account=alice", "", "", &loans))
	assert.Len(t, loans, 1)

	var balances []*core.Balance
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/balances", "alice-key", "", &balances))
	assert.Len(t, balances, 2)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pools/eth/loans/1/close", "alice-key", "", &loan))
	assert.Equal(t, core.LoanStatusClosed, loan.Status)

	var totals map[string]decimal.Decimal
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/pools/eth", "", "", nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/fees", "", "", &totals))
	assert.Empty(t, totals)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/pools/eth", "root-key", "", nil))
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPost, "/pools/eth/loans", "alice-key",
		`{"collateral":"1","amount":"100","currency":"sUSD"}`, nil))
}

func TestSuspend(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pools", "root-key", ethPool, nil))
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/balances/mint", "root-key",
		`{"account":"alice","currency":"ETH","amount":"2"}`, nil))

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pools/eth/suspend", "root-key", `{"reason":"audit"}`, nil))

	var rejected envelope
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPost, "/pools/eth/loans", "alice-key",
		`{"collateral":"1","amount":"100","currency":"sUSD"}`, &rejected))
	assert.Equal(t, int(core.ErrSuspended), rejected.Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pools/eth/resume", "root-key", "", nil))
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/pools/eth/loans", "alice-key",
		`{"collateral":"1","amount":"100","currency":"sUSD"}`, nil))
}

func TestManagerSettings(t *testing.T) {
	s := newTestServer(t)

	var settings core.ManagerSettings
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/manager/settings", "root-key",
		`{"name":"short_slope","value":"0.8"}`, &settings))
	assert.Equal(t, "0.8", settings.ShortSlope.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/manager/settings", "root-key",
		`{"name":"bogus","value":"1"}`, nil))

	var rate struct {
		ShortRate decimal.Decimal `json:"short_rate"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/manager/rates/sBTC", "", "", &rate))
	assert.Equal(t, "0.05", rate.ShortRate.String())
}
