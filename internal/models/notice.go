package models

import (
	"time"

	"github.com/google/uuid"
)

// Status values for a payment notice. Everything except pending is terminal:
// a settled or closed notice never transitions again.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusExpired   = "expired"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

var noticeTransitions = map[string]map[string]struct{}{
	StatusPending: {
		StatusPaid:      {},
		StatusExpired:   {},
		StatusFailed:    {},
		StatusCancelled: {},
	},
	StatusPaid:      {},
	StatusExpired:   {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// CanTransition returns whether a notice can move from the current status to
// the target status. A same-status transition is allowed (treated as a no-op
// by callers) so duplicate provider deliveries never surface as errors.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := noticeTransitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminalStatus reports whether the status permits no further transitions.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusPaid, StatusExpired, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

type PaymentNotice struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	UserID        uuid.UUID  `json:"user_id"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	XenditLinkID  *string    `json:"xendit_link_id,omitempty"`
	XenditLinkURL *string    `json:"xendit_link_url,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// NoticeExternalID derives the provider-side reference for a notice. Create
// and reissue must send the same value so the provider treats both calls as
// the same payment context.
func NoticeExternalID(noticeID uuid.UUID) string {
	return "notice_" + noticeID.String()
}

// ExternalID returns the deterministic provider reference for this notice.
func (n *PaymentNotice) ExternalID() string {
	return NoticeExternalID(n.ID)
}

type CreateNoticeRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
}

type PayNoticeRequest struct {
	ChannelCode string `json:"channel_code"`
}

type PayNoticeResponse struct {
	Success    bool          `json:"success"`
	PaymentURL string        `json:"payment_url"`
	Notice     PaymentNotice `json:"notice"`
}

type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}
