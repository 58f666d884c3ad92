package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/pkg/apperror"
)

// ---- Requests ----

type addExpenseRequest struct {
	PayerID     string           `json:"payer_id"`
	Total       int64            `json:"total"`
	Currency    string           `json:"currency"`
	Splits      map[string]int64 `json:"splits"`
	Description string           `json:"description,omitempty"`
}

type proposeSettlementRequest struct {
	FromMemberID  string `json:"from_member_id"`
	ToMemberID    string `json:"to_member_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type confirmSettlementRequest struct {
	// Pin is an alternative to a step-up token: a correct PIN counts as
	// step-up verification for this confirmation.
	Pin string `json:"pin,omitempty"`
}

type rejectSettlementRequest struct {
	Reason string `json:"reason,omitempty"`
}

type stepUpRequest struct {
	Pin string `json:"pin"`
}

// ---- Responses ----

type errorResponse struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

type balancesResponse struct {
	GroupID  string           `json:"group_id"`
	Balances map[string]int64 `json:"balances"`
}

type debtResponse struct {
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Amount       int64  `json:"amount"`
}

type debtsResponse struct {
	GroupID string         `json:"group_id"`
	Debts   []debtResponse `json:"debts"`
}

type settlementResponse struct {
	ID                         string `json:"id"`
	GroupID                    string `json:"group_id"`
	FromMemberID               string `json:"from_member_id"`
	ToMemberID                 string `json:"to_member_id"`
	Amount                     int64  `json:"amount"`
	Currency                   string `json:"currency"`
	Status                     string `json:"status"`
	RequiresStepUpVerification bool   `json:"requires_step_up_verification"`
	Verified                   bool   `json:"verified"`
	PaymentMethod              string `json:"payment_method,omitempty"`
	Notes                      string `json:"notes,omitempty"`
	CreatedAt                  int64  `json:"created_at"`
	CreatedBy                  string `json:"created_by,omitempty"`
	ConfirmedAt                int64  `json:"confirmed_at,omitempty"`
	ConfirmedBy                string `json:"confirmed_by,omitempty"`
	RejectedReason             string `json:"rejected_reason,omitempty"`
}

type expenseResponse struct {
	ID          string           `json:"id"`
	GroupID     string           `json:"group_id"`
	PayerID     string           `json:"payer_id"`
	Total       int64            `json:"total"`
	Currency    string           `json:"currency"`
	Splits      map[string]int64 `json:"splits"`
	Status      string           `json:"status"`
	Description string           `json:"description,omitempty"`
	CreatedAt   int64            `json:"created_at"`
}

type stepUpResponse struct {
	Token string `json:"token"`
}

func toSettlementResponse(s *models.SettlementRecord) settlementResponse {
	return settlementResponse{
		ID:                         s.ID,
		GroupID:                    s.GroupID,
		FromMemberID:               s.FromMemberID,
		ToMemberID:                 s.ToMemberID,
		Amount:                     s.Amount,
		Currency:                   s.Currency,
		Status:                     string(s.Status),
		RequiresStepUpVerification: s.RequiresStepUpVerification,
		Verified:                   s.Verified,
		PaymentMethod:              s.PaymentMethod,
		Notes:                      s.Notes,
		CreatedAt:                  s.CreatedAt,
		CreatedBy:                  s.CreatedBy,
		ConfirmedAt:                s.ConfirmedAt,
		ConfirmedBy:                s.ConfirmedBy,
		RejectedReason:             s.RejectedReason,
	}
}

func toExpenseResponse(e *models.ExpenseRecord) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Total:       e.Total,
		Currency:    e.Currency,
		Splits:      e.Splits,
		Status:      string(e.Status),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// ---- Helpers ----

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps an error to its HTTP response. AppErrors carry their own
// status and code; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.HTTPStatus, errorResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}
	slog.Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Code:    "SYS_001",
		Message: "internal server error",
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation("invalid request body: " + err.Error())
	}
	return nil
}
