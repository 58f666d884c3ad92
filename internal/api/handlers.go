// Package api exposes the ledger engine over a JSON HTTP surface for the
// mobile client's backend.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/pkg/apperror"
)

// Handler bundles the service dependencies behind the HTTP surface.
type Handler struct {
	svc      *service.SettlementService
	jwt      *auth.JWTManager
	verifier *auth.PinVerifier
}

// NewHandler creates the API handler.
func NewHandler(svc *service.SettlementService, jwt *auth.JWTManager, verifier *auth.PinVerifier) *Handler {
	return &Handler{svc: svc, jwt: jwt, verifier: verifier}
}

// GetBalances returns the group's current net balances.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	balances, err := h.svc.CurrentBalances(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balancesResponse{GroupID: groupID, Balances: balances})
}

// GetSimplifiedDebts returns the suggested transfers clearing all balances.
func (h *Handler) GetSimplifiedDebts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	debts, err := h.svc.SimplifiedDebts(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]debtResponse, len(debts))
	for i, d := range debts {
		out[i] = debtResponse{FromMemberID: d.FromMemberID, ToMemberID: d.ToMemberID, Amount: d.Amount}
	}
	writeJSON(w, http.StatusOK, debtsResponse{GroupID: groupID, Debts: out})
}

// AddExpense records a new shared expense.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	expense, err := h.svc.AddExpense(r.Context(), service.AddExpenseParams{
		GroupID:     chi.URLParam(r, "groupID"),
		ActorID:     MemberID(r.Context()),
		PayerID:     req.PayerID,
		Total:       req.Total,
		Currency:    req.Currency,
		Splits:      req.Splits,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// VoidExpense excludes an expense from balances while keeping its history.
func (h *Handler) VoidExpense(w http.ResponseWriter, r *http.Request) {
	err := h.svc.VoidExpense(r.Context(),
		chi.URLParam(r, "groupID"),
		MemberID(r.Context()),
		chi.URLParam(r, "expenseID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListExpenses returns the group's active expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpenses(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// ProposeSettlement creates a pending settlement.
func (h *Handler) ProposeSettlement(w http.ResponseWriter, r *http.Request) {
	var req proposeSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.svc.Propose(r.Context(), service.ProposeSettlementParams{
		GroupID:       chi.URLParam(r, "groupID"),
		ActorID:       MemberID(r.Context()),
		FromMemberID:  req.FromMemberID,
		ToMemberID:    req.ToMemberID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementResponse(settlement))
}

// ListSettlements returns the group's settlement history.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.svc.ListSettlements(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]settlementResponse, len(settlements))
	for i := range settlements {
		out[i] = toSettlementResponse(&settlements[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// ConfirmSettlement resolves a pending settlement as confirmed. Step-up
// verification is satisfied either by a step-up bearer token or by a
// correct PIN in the request body.
func (h *Handler) ConfirmSettlement(w http.ResponseWriter, r *http.Request) {
	var req confirmSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actorID := MemberID(r.Context())
	verified := StepUpVerified(r.Context())
	if !verified && req.Pin != "" {
		if err := h.verifier.Verify(r.Context(), actorID, req.Pin); err != nil {
			writeError(w, apperror.ErrStepUpVerificationFailed())
			return
		}
		verified = true
	}

	settlement, err := h.svc.Confirm(r.Context(), chi.URLParam(r, "settlementID"), actorID, verified)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

// RejectSettlement resolves a pending settlement as rejected.
func (h *Handler) RejectSettlement(w http.ResponseWriter, r *http.Request) {
	var req rejectSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settlement, err := h.svc.Reject(r.Context(), chi.URLParam(r, "settlementID"), MemberID(r.Context()), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementResponse(settlement))
}

// StepUp exchanges a correct PIN for a short-lived step-up token.
func (h *Handler) StepUp(w http.ResponseWriter, r *http.Request) {
	var req stepUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actorID := MemberID(r.Context())
	if err := h.verifier.Verify(r.Context(), actorID, req.Pin); err != nil {
		writeError(w, apperror.ErrStepUpVerificationFailed())
		return
	}

	token, err := h.jwt.GenerateStepUp(actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepUpResponse{Token: token})
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
