package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"notipayBack/internal/models"
)

type PaymentNoticeRepository struct {
	DB *sql.DB
}

const noticeColumns = `id, title, description, amount, currency, user_id, created_by,
       xendit_link_id, xendit_link_url, status, created_at, paid_at`

func (r *PaymentNoticeRepository) Create(ctx context.Context, notice *models.PaymentNotice) error {
	const q = `
        INSERT INTO payment_notices
            (id, title, description, amount, currency, user_id, created_by,
             xendit_link_id, xendit_link_url, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, q,
		notice.ID, notice.Title, notice.Description, notice.Amount, notice.Currency,
		notice.UserID, notice.CreatedBy, notice.XenditLinkID, notice.XenditLinkURL,
		notice.Status, notice.CreatedAt,
	)
	return err
}

func (r *PaymentNoticeRepository) GetByID(ctx context.Context, id uuid.UUID) (models.PaymentNotice, error) {
	const q = `SELECT ` + noticeColumns + ` FROM payment_notices WHERE id = $1`
	return r.scanNotice(r.DB.QueryRowContext(ctx, q, id))
}

func (r *PaymentNoticeRepository) GetByLinkID(ctx context.Context, linkID string) (models.PaymentNotice, error) {
	const q = `SELECT ` + noticeColumns + ` FROM payment_notices WHERE xendit_link_id = $1`
	return r.scanNotice(r.DB.QueryRowContext(ctx, q, linkID))
}

func (r *PaymentNoticeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentNotice, error) {
	const q = `SELECT ` + noticeColumns + ` FROM payment_notices
        WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryNotices(ctx, q, userID)
}

func (r *PaymentNoticeRepository) ListUnpaidByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentNotice, error) {
	const q = `SELECT ` + noticeColumns + ` FROM payment_notices
        WHERE user_id = $1 AND status <> $2 ORDER BY created_at DESC`
	return r.queryNotices(ctx, q, userID, models.StatusPaid)
}

// MarkPaid settles the notice with a conditional update so that concurrent
// webhook deliveries cannot overwrite each other: the row only changes if the
// notice is still pending. Returns false when no row was updated.
func (r *PaymentNoticeRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	const q = `UPDATE payment_notices SET status = $1, paid_at = $2
        WHERE id = $3 AND status = $4`
	res, err := r.DB.ExecContext(ctx, q, models.StatusPaid, paidAt, id, models.StatusPending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// MarkStatus moves a pending notice to the given status. Same conditional
// update discipline as MarkPaid.
func (r *PaymentNoticeRepository) MarkStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	const q = `UPDATE payment_notices SET status = $1
        WHERE id = $2 AND status = $3`
	res, err := r.DB.ExecContext(ctx, q, status, id, models.StatusPending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SaveReissuedLink persists a reissued payment link and the updated provider
// payment record as one transaction, so a new link is never stored without
// its audit row (and vice versa).
func (r *PaymentNoticeRepository) SaveReissuedLink(ctx context.Context, notice models.PaymentNotice, payment models.XenditPayment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const updateNotice = `UPDATE payment_notices
        SET xendit_link_id = $1, xendit_link_url = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, updateNotice,
		notice.XenditLinkID, notice.XenditLinkURL, notice.ID); err != nil {
		return err
	}

	const upsertPayment = `
        INSERT INTO xendit_payments
            (id, notice_id, amount, currency, channel_code, title, link_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (notice_id) DO UPDATE SET
            amount = EXCLUDED.amount,
            currency = EXCLUDED.currency,
            channel_code = EXCLUDED.channel_code,
            title = EXCLUDED.title,
            link_id = EXCLUDED.link_id,
            updated_at = EXCLUDED.updated_at`
	if _, err := tx.ExecContext(ctx, upsertPayment,
		payment.ID, payment.NoticeID, payment.Amount, payment.Currency,
		payment.ChannelCode, payment.Title, payment.LinkID,
		payment.CreatedAt, payment.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PaymentNoticeRepository) scanNotice(row *sql.Row) (models.PaymentNotice, error) {
	var n models.PaymentNotice
	err := row.Scan(&n.ID, &n.Title, &n.Description, &n.Amount, &n.Currency,
		&n.UserID, &n.CreatedBy, &n.XenditLinkID, &n.XenditLinkURL,
		&n.Status, &n.CreatedAt, &n.PaidAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentNotice{}, models.ErrNoticeNotFound
	}
	if err != nil {
		return models.PaymentNotice{}, err
	}
	return n, nil
}

func (r *PaymentNoticeRepository) queryNotices(ctx context.Context, q string, args ...any) ([]models.PaymentNotice, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []models.PaymentNotice
	for rows.Next() {
		var n models.PaymentNotice
		if err := rows.Scan(&n.ID, &n.Title, &n.Description, &n.Amount, &n.Currency,
			&n.UserID, &n.CreatedBy, &n.XenditLinkID, &n.XenditLinkURL,
			&n.Status, &n.CreatedAt, &n.PaidAt); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}
