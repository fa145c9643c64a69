package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"notipayBack/internal/models"
)

// NoticeStore is the persistence boundary for notices and their provider
// payment records.
type NoticeStore interface {
	Create(ctx context.Context, notice *models.PaymentNotice) error
	GetByID(ctx context.Context, id uuid.UUID) (models.PaymentNotice, error)
	GetByLinkID(ctx context.Context, linkID string) (models.PaymentNotice, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentNotice, error)
	ListUnpaidByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentNotice, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
	MarkStatus(ctx context.Context, id uuid.UUID, status string) (bool, error)
	SaveReissuedLink(ctx context.Context, notice models.PaymentNotice, payment models.XenditPayment) error
}

// PaymentLinkGateway is the outbound side: the external provider that hosts
// the actual payment page.
type PaymentLinkGateway interface {
	CreatePaymentLink(ctx context.Context, externalID string, amount float64, currency, description, channelCode string) (linkID string, url string, err error)
}

// PaymentNoticeService is the sole writer of notice and provider-payment
// state. Callers are expected to have authorized the request already; the
// service enforces business invariants, not identity.
type PaymentNoticeService struct {
	Notices         NoticeStore
	Gateway         PaymentLinkGateway
	Notifications   *FCMService
	DefaultCurrency string
}

// Create validates the request, obtains a hosted payment link and persists
// the notice in one pass. If the gateway call fails nothing is persisted, so
// this path never leaves a pending notice without a link.
func (s *PaymentNoticeService) Create(ctx context.Context, adminID, userID uuid.UUID, title, description string, amount float64, currency string) (models.PaymentNotice, error) {
	if amount <= 0 {
		return models.PaymentNotice{}, models.ErrInvalidAmount
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.DefaultCurrency
	}
	if currency == "" {
		return models.PaymentNotice{}, models.ErrInvalidCurrency
	}

	notice := models.PaymentNotice{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Amount:      amount,
		Currency:    currency,
		UserID:      userID,
		CreatedBy:   adminID,
		Status:      models.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	linkID, linkURL, err := s.Gateway.CreatePaymentLink(ctx, notice.ExternalID(), amount, currency, description, "")
	if err != nil {
		return models.PaymentNotice{}, err
	}
	notice.XenditLinkID = &linkID
	notice.XenditLinkURL = &linkURL

	if err := s.Notices.Create(ctx, &notice); err != nil {
		return models.PaymentNotice{}, err
	}

	s.Notifications.NotifyUser(ctx, notice.UserID, "New payment notice",
		fmt.Sprintf("%s: %.2f %s", notice.Title, notice.Amount, notice.Currency))

	return notice, nil
}

func (s *PaymentNoticeService) GetByID(ctx context.Context, id uuid.UUID) (models.PaymentNotice, error) {
	return s.Notices.GetByID(ctx, id)
}

func (s *PaymentNoticeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentNotice, error) {
	return s.Notices.ListByUser(ctx, userID)
}

func (s *PaymentNoticeService) ListUnpaidForUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentNotice, error) {
	return s.Notices.ListUnpaidByUser(ctx, userID)
}

// ReissueLink requests a fresh payment link for the notice under the chosen
// channel. The gateway is called with the notice's original external
// reference, never a new one, so the provider treats the call as an update of
// the same payment context. A settled notice never reaches the gateway.
func (s *PaymentNoticeService) ReissueLink(ctx context.Context, noticeID uuid.UUID, channelCode string) (string, models.PaymentNotice, error) {
	notice, err := s.Notices.GetByID(ctx, noticeID)
	if err != nil {
		return "", models.PaymentNotice{}, err
	}
	if notice.Status == models.StatusPaid {
		return "", notice, models.ErrAlreadySettled
	}

	channelCode = strings.ToUpper(strings.TrimSpace(channelCode))

	linkID, linkURL, err := s.Gateway.CreatePaymentLink(ctx,
		notice.ExternalID(), notice.Amount, notice.Currency, notice.Title, channelCode)
	if err != nil {
		return "", notice, err
	}

	notice.XenditLinkID = &linkID
	notice.XenditLinkURL = &linkURL

	now := time.Now().UTC()
	payment := models.XenditPayment{
		ID:        uuid.New(),
		NoticeID:  notice.ID,
		Amount:    notice.Amount,
		Currency:  notice.Currency,
		Title:     notice.Title,
		LinkID:    linkID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if channelCode != "" {
		payment.ChannelCode = &channelCode
	}

	if err := s.Notices.SaveReissuedLink(ctx, notice, payment); err != nil {
		return "", notice, err
	}

	return linkURL, notice, nil
}

// Transition applies a provider-confirmed status change to the notice.
// Terminal notices are returned unchanged, so duplicate or out-of-order
// deliveries are harmless.
func (s *PaymentNoticeService) Transition(ctx context.Context, noticeID uuid.UUID, status string, occurredAt time.Time) (models.PaymentNotice, error) {
	notice, err := s.Notices.GetByID(ctx, noticeID)
	if err != nil {
		return models.PaymentNotice{}, err
	}
	return s.transition(ctx, notice, status, occurredAt)
}

// TransitionByLinkID is the webhook entry point: provider callbacks identify
// their own payment-link id, not our notice id.
func (s *PaymentNoticeService) TransitionByLinkID(ctx context.Context, linkID, status string, occurredAt time.Time) (models.PaymentNotice, error) {
	notice, err := s.Notices.GetByLinkID(ctx, linkID)
	if err != nil {
		return models.PaymentNotice{}, err
	}
	return s.transition(ctx, notice, status, occurredAt)
}

func (s *PaymentNoticeService) transition(ctx context.Context, notice models.PaymentNotice, status string, occurredAt time.Time) (models.PaymentNotice, error) {
	if models.IsTerminalStatus(notice.Status) {
		log.Printf("payment notice %s already %s, ignoring %s event", notice.ID, notice.Status, status)
		return notice, nil
	}
	if !models.CanTransition(notice.Status, status) {
		log.Printf("payment notice %s: transition %s -> %s not allowed, ignoring", notice.ID, notice.Status, status)
		return notice, nil
	}
	if status == notice.Status {
		return notice, nil
	}

	var updated bool
	var err error
	if status == models.StatusPaid {
		updated, err = s.Notices.MarkPaid(ctx, notice.ID, occurredAt)
	} else {
		updated, err = s.Notices.MarkStatus(ctx, notice.ID, status)
	}
	if err != nil {
		return models.PaymentNotice{}, err
	}
	if !updated {
		// Lost the race to a concurrent delivery; whatever won is terminal now.
		return s.Notices.GetByID(ctx, notice.ID)
	}

	fresh, err := s.Notices.GetByID(ctx, notice.ID)
	if err != nil {
		return models.PaymentNotice{}, err
	}

	if fresh.Status == models.StatusPaid {
		s.Notifications.NotifyUser(ctx, fresh.UserID, "Payment received",
			fmt.Sprintf("%s has been settled", fresh.Title))
	}

	return fresh, nil
}

// MarkPaidManually is the administrative override: it routes through the
// same idempotent transition as provider callbacks, so an already settled
// notice stays untouched.
func (s *PaymentNoticeService) MarkPaidManually(ctx context.Context, noticeID uuid.UUID, paidAt *time.Time) (models.PaymentNotice, error) {
	at := time.Now().UTC()
	if paidAt != nil {
		at = *paidAt
	}
	return s.Transition(ctx, noticeID, models.StatusPaid, at)
}
