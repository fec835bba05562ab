package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/G-studio-design/aplikasi-notify/pkg/models"
	"github.com/G-studio-design/aplikasi-notify/pkg/types"
)

// DefaultNotificationLimit caps the whole notification log. Insertion past
// the cap evicts the oldest records, regardless of user.
const DefaultNotificationLimit = 300

var ErrNotFound = errors.New("record not found")

type NotificationRepository struct {
	db    *gorm.DB
	limit int
}

func NewNotificationRepository(db *gorm.DB, limit int) *NotificationRepository {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &NotificationRepository{db: db, limit: limit}
}

// Append inserts one record and enforces the FIFO cap in the same
// transaction, so concurrent fanouts cannot under- or over-evict.
func (r *NotificationRepository) Append(ctx context.Context, userID string, payload types.NotificationPayload, projectID string) (*models.Notification, error) {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProjectID: projectID,
		Message:   payload.Body,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.Notification{}).Count(&count).Error; err != nil {
			return err
		}
		if excess := count - int64(r.limit); excess > 0 {
			return tx.Exec(
				`DELETE FROM notifications WHERE seq IN (SELECT seq FROM notifications ORDER BY seq ASC LIMIT ?)`,
				excess,
			).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append notification: %w", err)
	}
	return n, nil
}

// ListForUser returns the user's records newest first. Every call re-reads
// the store.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("seq DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags a record as read. Marking an already-read record again is a
// no-op; an unknown id is ErrNotFound.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject removes every record of a deleted project. Nothing to
// delete is not an error.
func (r *NotificationRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if projectID == "" {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.Notification{}).Error
}

func (r *NotificationRepository) ClearAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM notifications`).Error
}

// Count reports the current log size.
func (r *NotificationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Count(&count).Error
	return count, err
}
