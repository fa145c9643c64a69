package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const xenditAPIVersion = "2023-10-01"

type XenditConfig struct {
	// Secret API key, sent as the basic-auth username with an empty password.
	APIKey string

	// Invoice API base, e.g. https://api.xendit.co
	BaseURL string

	// Where the hosted payment page returns the payer afterwards.
	SuccessRedirectURL string
	FailureRedirectURL string

	// Fallback payer email for the invoice payload.
	PayerEmail string

	Client *http.Client
	Logger *slog.Logger
}

// XenditService creates hosted payment links through the provider's invoice
// API. It never retries on its own; callers retry with the same external id,
// which keeps duplicate calls harmless on the provider side.
type XenditService struct {
	apiKey  string
	baseURL *url.URL

	successRedirectURL string
	failureRedirectURL string
	payerEmail         string

	httpClient *http.Client
	logger     *slog.Logger
}

func NewXenditService(cfg XenditConfig) (*XenditService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("xendit: api_key/base_url are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	return &XenditService{
		apiKey:             cfg.APIKey,
		baseURL:            u,
		successRedirectURL: cfg.SuccessRedirectURL,
		failureRedirectURL: cfg.FailureRedirectURL,
		payerEmail:         cfg.PayerEmail,
		httpClient:         client,
		logger:             logger,
	}, nil
}

type invoiceRequest struct {
	ExternalID         string  `json:"external_id"`
	PayerEmail         string  `json:"payer_email,omitempty"`
	Description        string  `json:"description,omitempty"`
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	SuccessRedirectURL string  `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string  `json:"failure_redirect_url,omitempty"`
	ShouldSendEmail    bool    `json:"should_send_email"`
	ChannelCode        string  `json:"channel_code,omitempty"`
}

type invoiceResponse struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	Status     string `json:"status"`
}

// CreatePaymentLink creates (or, when called again with the same externalID,
// refreshes) a hosted payment link and returns the provider link id and the
// redirect URL. channelCode may be empty for an unconstrained link.
func (s *XenditService) CreatePaymentLink(ctx context.Context, externalID string, amount float64, currency, description, channelCode string) (string, string, error) {
	logger := s.logger.With("op", "CreatePaymentLink", "external_id", externalID)

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v2/invoices")

	reqBody := invoiceRequest{
		ExternalID:         externalID,
		PayerEmail:         s.payerEmail,
		Description:        description,
		Amount:             amount,
		Currency:           strings.ToUpper(currency), // provider requires uppercase
		SuccessRedirectURL: s.successRedirectURL,
		FailureRedirectURL: s.failureRedirectURL,
		ShouldSendEmail:    false,
		ChannelCode:        channelCode,
	}
	body, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("invoices request: %w", err)
	}
	req.SetBasicAuth(s.apiKey, "")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", xenditAPIVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("invoices request: %w", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	logger.Debug("invoices raw", "status", resp.Status, "body", trimBody(string(b), 2000))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", &XenditError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}

	var out invoiceResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", "", &XenditError{StatusCode: resp.StatusCode, Status: resp.Status, Body: "decode invoice response: " + err.Error()}
	}
	if strings.TrimSpace(out.ID) == "" || strings.TrimSpace(out.InvoiceURL) == "" {
		return "", "", &XenditError{StatusCode: resp.StatusCode, Status: resp.Status, Body: "invoice response missing id or invoice_url"}
	}

	return out.ID, out.InvoiceURL, nil
}

type XenditError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *XenditError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("xendit error: %s", e.Status)
	}
	return fmt.Sprintf("xendit error: %s: %s", e.Status, bt)
}

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
