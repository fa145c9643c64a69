package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"notipayBack/internal/models"
	"notipayBack/internal/services"
)

type PaymentNoticeHandler struct {
	Service *services.PaymentNoticeService
}

// Create issues a new payment notice against a payer. Admin-only; the route
// layer guarantees the role, the handler records the issuing admin for audit.
func (h *PaymentNoticeHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, ok := callerID(r)
	if !ok {
		http.Error(w, "caller identity missing", http.StatusUnauthorized)
		return
	}

	var req models.CreateNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	notice, err := h.Service.Create(r.Context(), adminID, req.UserID,
		req.Title, req.Description, req.Amount, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrInvalidCurrency):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "create payment link: "+err.Error(), xenditErrorStatus(err))
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(notice)
}

// Get returns a single notice. Non-admin callers may only read their own.
func (h *PaymentNoticeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := noticeIDParam(r)
	if err != nil {
		http.Error(w, "Invalid notice ID", http.StatusBadRequest)
		return
	}

	uid, ok := callerID(r)
	if !ok {
		http.Error(w, "caller identity missing", http.StatusUnauthorized)
		return
	}

	notice, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNoticeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if notice.UserID != uid && !isAdmin(r) {
		http.Error(w, "you can only access your own payment notices", http.StatusForbidden)
		return
	}

	json.NewEncoder(w).Encode(notice)
}

func (h *PaymentNoticeHandler) MyNotices(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(r)
	if !ok {
		http.Error(w, "caller identity missing", http.StatusUnauthorized)
		return
	}

	notices, err := h.Service.ListForUser(r.Context(), uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if notices == nil {
		notices = []models.PaymentNotice{}
	}
	json.NewEncoder(w).Encode(notices)
}

func (h *PaymentNoticeHandler) MyUnpaidNotices(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(r)
	if !ok {
		http.Error(w, "caller identity missing", http.StatusUnauthorized)
		return
	}

	notices, err := h.Service.ListUnpaidForUser(r.Context(), uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if notices == nil {
		notices = []models.PaymentNotice{}
	}
	json.NewEncoder(w).Encode(notices)
}

// Pay reissues the hosted payment link for the notice under the requested
// channel. Owner-only; a settled notice is rejected before the gateway call.
func (h *PaymentNoticeHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := noticeIDParam(r)
	if err != nil {
		http.Error(w, "Invalid notice ID", http.StatusBadRequest)
		return
	}

	uid, ok := callerID(r)
	if !ok {
		http.Error(w, "caller identity missing", http.StatusUnauthorized)
		return
	}

	notice, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNoticeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if notice.UserID != uid {
		http.Error(w, "you can only pay your own payment notices", http.StatusForbidden)
		return
	}

	var req models.PayNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	url, updated, err := h.Service.ReissueLink(r.Context(), id, req.ChannelCode)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoticeNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, models.ErrAlreadySettled):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "create payment link: "+err.Error(), xenditErrorStatus(err))
		}
		return
	}

	json.NewEncoder(w).Encode(models.PayNoticeResponse{
		Success:    true,
		PaymentURL: url,
		Notice:     updated,
	})
}

// MarkPaid is the administrative override for payments settled outside the
// provider (cash, bank transfer). Admin-only and idempotent.
func (h *PaymentNoticeHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := noticeIDParam(r)
	if err != nil {
		http.Error(w, "Invalid notice ID", http.StatusBadRequest)
		return
	}

	var req models.MarkPaidRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	notice, err := h.Service.MarkPaidManually(r.Context(), id, req.PaidAt)
	if err != nil {
		if errors.Is(err, models.ErrNoticeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(notice)
}

// xenditErrorStatus maps gateway failures onto response codes: provider-side
// 4xx pass through, everything else is a bad gateway.
func xenditErrorStatus(err error) int {
	var apiErr *services.XenditError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
	}
	return http.StatusBadGateway
}
