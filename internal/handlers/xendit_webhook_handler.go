package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"notipayBack/internal/models"
	"notipayBack/internal/services"
)

// callbackStatusMap translates the provider's event codes into notice
// statuses. Anything else is ignored: the webhook endpoint is not a
// validation endpoint and must not trigger provider retries.
var callbackStatusMap = map[string]string{
	"PAID":         models.StatusPaid,
	"PAID_SUCCESS": models.StatusPaid,
	"COMPLETED":    models.StatusPaid,
	"EXPIRED":      models.StatusExpired,
}

type XenditWebhookHandler struct {
	Service *services.PaymentNoticeService

	// Shared secret the provider echoes back in x-callback-token. This is
	// the only authentication on the callback path.
	CallbackToken string
}

// HandleCallback applies an inbound provider event. After the token check it
// always answers 200: parse failures, unknown link ids and unmapped statuses
// are logged and swallowed so at-least-once delivery never turns into a
// retry storm.
func (h *XenditWebhookHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("x-callback-token")
	if h.CallbackToken == "" || token != h.CallbackToken {
		http.Error(w, "invalid callback token", http.StatusForbidden)
		return
	}

	var payload struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("xendit webhook: decode body: %v", err)
		h.ok(w)
		return
	}
	if payload.ID == "" {
		log.Printf("xendit webhook: event without id, ignoring")
		h.ok(w)
		return
	}

	status, recognized := callbackStatusMap[payload.Status]
	if !recognized {
		log.Printf("xendit webhook: unrecognized status %q for link %s, ignoring", payload.Status, payload.ID)
		h.ok(w)
		return
	}

	_, err := h.Service.TransitionByLinkID(r.Context(), payload.ID, status, time.Now().UTC())
	if errors.Is(err, models.ErrNoticeNotFound) {
		// Provider events may reference links we do not track (test events).
		log.Printf("xendit webhook: no notice for link %s, ignoring", payload.ID)
	} else if err != nil {
		log.Printf("xendit webhook: transition link %s to %s: %v", payload.ID, status, err)
	}

	h.ok(w)
}

func (h *XenditWebhookHandler) ok(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
