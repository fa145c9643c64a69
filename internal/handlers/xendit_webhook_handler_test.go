package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"notipayBack/internal/models"
	"notipayBack/internal/services"
)

type webhookStore struct {
	notices map[uuid.UUID]models.PaymentNotice
	reads   int
}

func (s *webhookStore) Create(_ context.Context, n *models.PaymentNotice) error {
	s.notices[n.ID] = *n
	return nil
}

func (s *webhookStore) GetByID(_ context.Context, id uuid.UUID) (models.PaymentNotice, error) {
	s.reads++
	n, ok := s.notices[id]
	if !ok {
		return models.PaymentNotice{}, models.ErrNoticeNotFound
	}
	return n, nil
}

func (s *webhookStore) GetByLinkID(_ context.Context, linkID string) (models.PaymentNotice, error) {
	s.reads++
	for _, n := range s.notices {
		if n.XenditLinkID != nil && *n.XenditLinkID == linkID {
			return n, nil
		}
	}
	return models.PaymentNotice{}, models.ErrNoticeNotFound
}

func (s *webhookStore) ListByUser(_ context.Context, _ uuid.UUID) ([]models.PaymentNotice, error) {
	return nil, nil
}

func (s *webhookStore) ListUnpaidByUser(_ context.Context, _ uuid.UUID) ([]models.PaymentNotice, error) {
	return nil, nil
}

func (s *webhookStore) MarkPaid(_ context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	n, ok := s.notices[id]
	if !ok || n.Status != models.StatusPending {
		return false, nil
	}
	n.Status = models.StatusPaid
	n.PaidAt = &paidAt
	s.notices[id] = n
	return true, nil
}

func (s *webhookStore) MarkStatus(_ context.Context, id uuid.UUID, status string) (bool, error) {
	n, ok := s.notices[id]
	if !ok || n.Status != models.StatusPending {
		return false, nil
	}
	n.Status = status
	s.notices[id] = n
	return true, nil
}

func (s *webhookStore) SaveReissuedLink(_ context.Context, _ models.PaymentNotice, _ models.XenditPayment) error {
	return nil
}

const testCallbackToken = "cb_secret"

func newWebhookFixture() (*XenditWebhookHandler, *webhookStore, models.PaymentNotice) {
	store := &webhookStore{notices: make(map[uuid.UUID]models.PaymentNotice)}

	linkID := "inv_42"
	linkURL := "https://checkout.xendit.co/inv_42"
	notice := models.PaymentNotice{
		ID:            uuid.New(),
		Title:         "Tuition Q3",
		Amount:        2500,
		Currency:      "PHP",
		UserID:        uuid.New(),
		CreatedBy:     uuid.New(),
		XenditLinkID:  &linkID,
		XenditLinkURL: &linkURL,
		Status:        models.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	store.notices[notice.ID] = notice

	h := &XenditWebhookHandler{
		Service:       &services.PaymentNoticeService{Notices: store},
		CallbackToken: testCallbackToken,
	}
	return h, store, notice
}

func postCallback(h *XenditWebhookHandler, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/xendit", strings.NewReader(body))
	if token != "" {
		req.Header.Set("x-callback-token", token)
	}
	rr := httptest.NewRecorder()
	h.HandleCallback(rr, req)
	return rr
}

func TestWebhookRejectsBadToken(t *testing.T) {
	h, store, _ := newWebhookFixture()

	for _, token := range []string{"", "wrong"} {
		rr := postCallback(h, token, `{"id":"inv_42","status":"PAID"}`)
		if rr.Code != http.StatusForbidden {
			t.Errorf("token %q: status = %d; want 403", token, rr.Code)
		}
	}
	if store.reads != 0 {
		t.Error("store must not be touched before the token check passes")
	}
}

func TestWebhookRejectsWhenTokenUnconfigured(t *testing.T) {
	h, _, _ := newWebhookFixture()
	h.CallbackToken = ""

	rr := postCallback(h, "anything", `{"id":"inv_42","status":"PAID"}`)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d; want 403 when no token is configured", rr.Code)
	}
}

func TestWebhookPaidEvent(t *testing.T) {
	h, store, notice := newWebhookFixture()

	rr := postCallback(h, testCallbackToken, `{"id":"inv_42","status":"PAID"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}

	got := store.notices[notice.ID]
	if got.Status != models.StatusPaid {
		t.Errorf("notice status = %q; want paid", got.Status)
	}
	if got.PaidAt == nil {
		t.Error("paid_at not set")
	}
}

func TestWebhookStatusAliases(t *testing.T) {
	for _, status := range []string{"PAID_SUCCESS", "COMPLETED"} {
		t.Run(status, func(t *testing.T) {
			h, store, notice := newWebhookFixture()
			rr := postCallback(h, testCallbackToken, `{"id":"inv_42","status":"`+status+`"}`)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			if got := store.notices[notice.ID]; got.Status != models.StatusPaid {
				t.Errorf("%s: notice status = %q; want paid", status, got.Status)
			}
		})
	}
}

func TestWebhookExpiredEvent(t *testing.T) {
	h, store, notice := newWebhookFixture()

	rr := postCallback(h, testCallbackToken, `{"id":"inv_42","status":"EXPIRED"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	if got := store.notices[notice.ID]; got.Status != models.StatusExpired {
		t.Errorf("notice status = %q; want expired", got.Status)
	}
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	h, store, notice := newWebhookFixture()

	postCallback(h, testCallbackToken, `{"id":"inv_42","status":"PAID"}`)
	first := store.notices[notice.ID].PaidAt

	rr := postCallback(h, testCallbackToken, `{"id":"inv_42","status":"PAID"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("duplicate delivery: status = %d; want 200", rr.Code)
	}

	got := store.notices[notice.ID]
	if got.Status != models.StatusPaid {
		t.Errorf("status = %q", got.Status)
	}
	if got.PaidAt == nil || first == nil || !got.PaidAt.Equal(*first) {
		t.Errorf("paid_at moved on duplicate delivery: %v -> %v", first, got.PaidAt)
	}
}

func TestWebhookIgnoresUnknownLink(t *testing.T) {
	h, _, _ := newWebhookFixture()

	rr := postCallback(h, testCallbackToken, `{"id":"inv_unknown","status":"PAID"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d; unknown link must still answer 200", rr.Code)
	}
}

func TestWebhookIgnoresUnmappedStatus(t *testing.T) {
	h, store, notice := newWebhookFixture()

	rr := postCallback(h, testCallbackToken, `{"id":"inv_42","status":"PENDING"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	if got := store.notices[notice.ID]; got.Status != models.StatusPending {
		t.Errorf("notice status = %q; unmapped event must not change it", got.Status)
	}
}

func TestWebhookIgnoresMalformedBody(t *testing.T) {
	h, _, _ := newWebhookFixture()

	rr := postCallback(h, testCallbackToken, `{not json`)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d; malformed body must still answer 200", rr.Code)
	}
}
