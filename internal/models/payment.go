package models

import (
	"time"

	"github.com/google/uuid"
)

// XenditPayment is the audit record of the latest link issuance for a notice.
// There is at most one current row per notice; a reissue updates it in place.
type XenditPayment struct {
	ID          uuid.UUID `json:"id"`
	NoticeID    uuid.UUID `json:"notice_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	ChannelCode *string   `json:"channel_code,omitempty"`
	Title       string    `json:"title"`
	LinkID      string    `json:"link_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
