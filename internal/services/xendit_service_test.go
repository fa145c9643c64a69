package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestXenditService(t *testing.T, baseURL string) *XenditService {
	t.Helper()
	svc, err := NewXenditService(XenditConfig{
		APIKey:             "xnd_test_key",
		BaseURL:            baseURL,
		SuccessRedirectURL: "https://app.local/ok",
		FailureRedirectURL: "https://app.local/fail",
		PayerEmail:         "payer@app.local",
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestCreatePaymentLink(t *testing.T) {
	var got invoiceRequest
	var gotAuthUser, gotAPIVersion string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthUser, _, _ = r.BasicAuth()
		gotAPIVersion = r.Header.Get("x-api-version")
		if r.Method != http.MethodPost || r.URL.Path != "/v2/invoices" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":          "inv_123",
			"invoice_url": "https://checkout.xendit.co/inv_123",
			"status":      "PENDING",
		})
	}))
	defer ts.Close()

	svc := newTestXenditService(t, ts.URL)

	linkID, linkURL, err := svc.CreatePaymentLink(context.Background(), "notice_abc", 1500, "php", "Tuition Q3", "gcash")
	if err != nil {
		t.Fatal(err)
	}
	if linkID != "inv_123" {
		t.Errorf("link id = %q; want inv_123", linkID)
	}
	if linkURL != "https://checkout.xendit.co/inv_123" {
		t.Errorf("link url = %q", linkURL)
	}

	if gotAuthUser != "xnd_test_key" {
		t.Errorf("basic auth user = %q; want api key", gotAuthUser)
	}
	if gotAPIVersion != xenditAPIVersion {
		t.Errorf("x-api-version = %q; want %q", gotAPIVersion, xenditAPIVersion)
	}
	if got.ExternalID != "notice_abc" {
		t.Errorf("external_id = %q", got.ExternalID)
	}
	if got.Currency != "PHP" {
		t.Errorf("currency = %q; want PHP", got.Currency)
	}
	if got.ChannelCode != "gcash" {
		t.Errorf("channel_code = %q", got.ChannelCode)
	}
	if got.Amount != 1500 {
		t.Errorf("amount = %v", got.Amount)
	}
	if got.ShouldSendEmail {
		t.Error("should_send_email must be false")
	}
}

func TestCreatePaymentLinkProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_code":"INVALID_API_KEY"}`))
	}))
	defer ts.Close()

	svc := newTestXenditService(t, ts.URL)

	_, _, err := svc.CreatePaymentLink(context.Background(), "notice_abc", 100, "PHP", "", "")
	var xerr *XenditError
	if !errors.As(err, &xerr) {
		t.Fatalf("want *XenditError, got %v", err)
	}
	if xerr.StatusCode != http.StatusBadRequest {
		t.Errorf("status code = %d; want 400", xerr.StatusCode)
	}
}

func TestCreatePaymentLinkBadResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"id": `},
		{"missing invoice url", `{"id":"inv_1"}`},
		{"missing id", `{"invoice_url":"https://checkout.xendit.co/x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			svc := newTestXenditService(t, ts.URL)
			_, _, err := svc.CreatePaymentLink(context.Background(), "notice_abc", 100, "PHP", "", "")
			var xerr *XenditError
			if !errors.As(err, &xerr) {
				t.Fatalf("want *XenditError, got %v", err)
			}
		})
	}
}

func TestNewXenditServiceRequiresKeyAndURL(t *testing.T) {
	if _, err := NewXenditService(XenditConfig{BaseURL: "https://api.xendit.co"}); err == nil {
		t.Error("want error without api key")
	}
	if _, err := NewXenditService(XenditConfig{APIKey: "k"}); err == nil {
		t.Error("want error without base url")
	}
}
