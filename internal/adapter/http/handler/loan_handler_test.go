package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/adapter/http/dto"
	"github.com/iho/bankist/internal/domain"
)

type loanServiceStub struct {
	requestFn func(ctx context.Context, amount decimal.Decimal) (*domain.Loan, error)
}

func (s *loanServiceStub) RequestLoan(ctx context.Context, amount decimal.Decimal) (*domain.Loan, error) {
	return s.requestFn(ctx, amount)
}

func TestLoanHandler_Request_Accepted(t *testing.T) {
	now := time.Now().UTC()
	handler := NewLoanHandler(&loanServiceStub{
		requestFn: func(ctx context.Context, amount decimal.Decimal) (*domain.Loan, error) {
			return &domain.Loan{
				ID:          "loan-1",
				Username:    "jd",
				Amount:      amount.Floor(),
				Status:      domain.LoanStatusPending,
				RequestedAt: now,
				ReviewAt:    now.Add(3 * time.Second),
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Request(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewBufferString(`{"amount":1000.75}`)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp dto.LoanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "pending" || !resp.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoanHandler_Request_Rejected(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		requestFn: func(ctx context.Context, amount decimal.Decimal) (*domain.Loan, error) {
			return nil, domain.ErrLoanRejected
		},
	})

	rec := httptest.NewRecorder()
	handler.Request(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewBufferString(`{"amount":85001}`)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "loan_rejected" {
		t.Fatalf("unexpected error: %+v", resp)
	}
}
