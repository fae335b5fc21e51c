// internal/api/handler/ledger_test.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"splitflow/internal/api/auth"
	"splitflow/internal/api/types"
	"splitflow/internal/domain"
	"splitflow/internal/util"
)

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) InitializeAccount(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) GetAccount(ctx context.Context, id domain.Identity) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) SetSplitPolicy(ctx context.Context, id domain.Identity, policy domain.SplitPolicy) (*domain.Account, error) {
	args := m.Called(ctx, id, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerService) RecordIncome(ctx context.Context, id domain.Identity, amount int64) (domain.Balance, *domain.Transaction, error) {
	args := m.Called(ctx, id, amount)
	tx, _ := args.Get(1).(*domain.Transaction)
	return args.Get(0).(domain.Balance), tx, args.Error(2)
}

func (m *MockLedgerService) Spend(ctx context.Context, id domain.Identity, amount int64, description string) (domain.Balance, *domain.Transaction, error) {
	args := m.Called(ctx, id, amount, description)
	tx, _ := args.Get(1).(*domain.Transaction)
	return args.Get(0).(domain.Balance), tx, args.Error(2)
}

func (m *MockLedgerService) TransferBetweenCategories(ctx context.Context, id domain.Identity, from, to domain.Category, amount int64) (domain.Balance, *domain.Transaction, error) {
	args := m.Called(ctx, id, from, to, amount)
	tx, _ := args.Get(1).(*domain.Transaction)
	return args.Get(0).(domain.Balance), tx, args.Error(2)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, id domain.Identity) ([]domain.Transaction, error) {
	args := m.Called(ctx, id)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *MockLedgerService) GetSystemStats(ctx context.Context) (domain.SystemStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SystemStats), args.Error(1)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// serve runs h for a request made by alice.
func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{Identity: "alice"}))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestWriteErrorStatusMapping(t *testing.T) {
	h := NewLedgerHandler(new(MockLedgerService), testLogger)

	cases := []struct {
		err    error
		status int
	}{
		{util.ErrNotFound, http.StatusNotFound},
		{util.ErrInvalidPolicy, http.StatusUnprocessableEntity},
		{util.ErrInsufficientFunds, http.StatusPaymentRequired},
		{util.ErrInvalidAmount, http.StatusBadRequest},
		{util.ErrSameCategory, http.StatusBadRequest},
		{util.ErrUnauthorized, http.StatusUnauthorized},
		{util.ErrForbidden, http.StatusForbidden},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeBody[types.ErrorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Error, "disk on fire")
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	valid := map[string]int64{
		"1":                   1,
		"1000":                1000,
		"1000.00":             1000,
		"9223372036854775807": 9223372036854775807,
	}
	for in, want := range valid {
		got, err := parseAmount(decimal.RequireFromString(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	invalid := map[string]error{
		"0":                   util.ErrInvalidAmount,
		"-5":                  util.ErrInvalidAmount,
		"10.5":                util.ErrInvalidArgument,
		"9223372036854775808": util.ErrAmountOverflow,
	}
	for in, want := range invalid {
		_, err := parseAmount(decimal.RequireFromString(in))
		assert.ErrorIs(t, err, want, in)
	}
}

func TestAccountEndpoints(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	account := &domain.Account{
		Identity:     "alice",
		Policy:       domain.DefaultSplitPolicy(),
		CreatedAt:    now,
		LastActiveAt: now,
	}

	t.Run("Initialize", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		svc.On("InitializeAccount", mock.Anything, domain.Identity("alice")).Return(account, nil).Once()

		rec := serve(h.InitializeAccount, http.MethodPost, "/v1/account", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[domain.Account](t, rec)
		assert.Equal(t, *account, got)
		svc.AssertExpectations(t)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		svc.On("GetAccount", mock.Anything, domain.Identity("alice")).Return(nil, util.ErrNotFound).Once()

		rec := serve(h.GetAccount, http.MethodGet, "/v1/account", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("SetPolicy", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		policy := domain.SplitPolicy{SpendPercent: 40, SavePercent: 40, InvestPercent: 20}
		updated := *account
		updated.Policy = policy
		svc.On("SetSplitPolicy", mock.Anything, domain.Identity("alice"), policy).Return(&updated, nil).Once()

		rec := serve(h.SetSplitPolicy, http.MethodPut, "/v1/account/policy", `{"spend_percent":40,"save_percent":40,"invest_percent":20}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, policy, decodeBody[domain.Account](t, rec).Policy)
		svc.AssertExpectations(t)
	})

	t.Run("SetPolicyInvalid", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		policy := domain.SplitPolicy{SpendPercent: 40, SavePercent: 40, InvestPercent: 19}
		svc.On("SetSplitPolicy", mock.Anything, domain.Identity("alice"), policy).Return(nil, util.ErrInvalidPolicy).Once()

		rec := serve(h.SetSplitPolicy, http.MethodPut, "/v1/account/policy", `{"spend_percent":40,"save_percent":40,"invest_percent":19}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("NoPrincipal", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)

		rec := httptest.NewRecorder()
		h.GetAccount(rec, httptest.NewRequest(http.MethodGet, "/v1/account", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	})
}

func TestMutationEndpoints(t *testing.T) {
	balance := domain.Balance{Spend: 500, Save: 300, Invest: 200, Total: 1000}
	tx := &domain.Transaction{ID: 7, Owner: "alice", Amount: 1000, Kind: domain.TransactionKindIncome}

	t.Run("IncomeAcceptsStringAndNumber", func(t *testing.T) {
		for _, body := range []string{`{"amount":1000}`, `{"amount":"1000"}`} {
			svc := new(MockLedgerService)
			h := NewLedgerHandler(svc, testLogger)
			svc.On("RecordIncome", mock.Anything, domain.Identity("alice"), int64(1000)).Return(balance, tx, nil).Once()

			rec := serve(h.RecordIncome, http.MethodPost, "/v1/account/income", body)
			assert.Equal(t, http.StatusOK, rec.Code, body)
			got := decodeBody[types.MutationResponse](t, rec)
			assert.Equal(t, balance, got.Balance)
			require.NotNil(t, got.Transaction)
			assert.Equal(t, int64(7), got.Transaction.ID)
			svc.AssertExpectations(t)
		}
	})

	t.Run("IncomeRejectsBadBodies", func(t *testing.T) {
		bodies := []string{
			`{"amount":-10}`,
			`{"amount":0}`,
			`{}`,
			`{"amount":"12.5"}`,
			`not json`,
			`{"amount":10,"identity":"bob"}`,
		}
		for _, body := range bodies {
			svc := new(MockLedgerService)
			h := NewLedgerHandler(svc, testLogger)

			rec := serve(h.RecordIncome, http.MethodPost, "/v1/account/income", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			svc.AssertNotCalled(t, "RecordIncome", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("SpendInsufficientFunds", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		svc.On("Spend", mock.Anything, domain.Identity("alice"), int64(5000), "rent").
			Return(domain.Balance{}, nil, util.ErrInsufficientFunds).Once()

		rec := serve(h.Spend, http.MethodPost, "/v1/account/spend", `{"amount":5000,"description":"rent"}`)
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Transfer", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		moved := domain.Balance{Spend: 550, Save: 250, Invest: 200, Total: 1000}
		transfer := &domain.Transaction{ID: 8, Kind: domain.TransactionKindTransfer, From: domain.CategorySave, To: domain.CategorySpend, Amount: 50}
		svc.On("TransferBetweenCategories", mock.Anything, domain.Identity("alice"), domain.CategorySave, domain.CategorySpend, int64(50)).
			Return(moved, transfer, nil).Once()

		rec := serve(h.Transfer, http.MethodPost, "/v1/account/transfers", `{"from":"Save","to":"spend","amount":50}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, moved, decodeBody[types.MutationResponse](t, rec).Balance)
		svc.AssertExpectations(t)
	})

	t.Run("TransferUnknownCategory", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)

		rec := serve(h.Transfer, http.MethodPost, "/v1/account/transfers", `{"from":"vacation","to":"spend","amount":50}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody[types.ErrorResponse](t, rec).Error, "from")
	})
}

func TestListTransactions(t *testing.T) {
	txs := []domain.Transaction{{ID: 4}, {ID: 3}, {ID: 2}, {ID: 1}, {ID: 0}}

	t.Run("Window", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		svc.On("ListTransactions", mock.Anything, domain.Identity("alice")).Return(txs, nil).Once()

		rec := serve(h.ListTransactions, http.MethodGet, "/v1/account/transactions?limit=2&offset=1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		page := decodeBody[types.PaginatedResponse[domain.Transaction]](t, rec)
		require.Len(t, page.Data, 2)
		assert.Equal(t, int64(3), page.Data[0].ID)
		assert.Equal(t, int64(2), page.Data[1].ID)
		assert.Equal(t, int64(5), page.TotalCount)
	})

	t.Run("EmptyForUnknownIdentity", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)
		svc.On("ListTransactions", mock.Anything, domain.Identity("alice")).Return(nil, nil).Once()

		rec := serve(h.ListTransactions, http.MethodGet, "/v1/account/transactions", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":[],"limit":0,"offset":0,"total_count":0}`, rec.Body.String())
	})

	t.Run("BadQuery", func(t *testing.T) {
		svc := new(MockLedgerService)
		h := NewLedgerHandler(svc, testLogger)

		for _, q := range []string{"limit=-1", "offset=x"} {
			rec := serve(h.ListTransactions, http.MethodGet, "/v1/account/transactions?"+q, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
		svc.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything)
	})
}

func TestGetSystemStats(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewLedgerHandler(svc, testLogger)
	svc.On("GetSystemStats", mock.Anything).Return(domain.SystemStats{AccountCount: 2, TransactionCount: 9}, nil).Once()

	rec := serve(h.GetSystemStats, http.MethodGet, "/v1/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account_count":2,"transaction_count":9}`, rec.Body.String())
}
