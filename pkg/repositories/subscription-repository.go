package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/G-studio-design/aplikasi-notify/pkg/models"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Save upserts by endpoint. A device re-registering under a different user
// reassigns ownership instead of leaving a duplicate registration behind.
func (r *SubscriptionRepository) Save(ctx context.Context, sub models.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
		}).
		Create(&sub).Error
}

func (r *SubscriptionRepository) ListForUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubscriptionRepository) ListForUsers(ctx context.Context, userIDs []string) ([]models.PushSubscription, error) {
	if len(userIDs) == 0 {
		return []models.PushSubscription{}, nil
	}
	var subs []models.PushSubscription
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Remove deletes by endpoint. Removing an endpoint that is already gone is a
// no-op.
func (r *SubscriptionRepository) Remove(ctx context.Context, endpoint string) error {
	return r.db.WithContext(ctx).
		Delete(&models.PushSubscription{}, "endpoint = ?", endpoint).Error
}

// RemoveForUser deletes one of the user's own registrations, for explicit
// unsubscription from a device.
func (r *SubscriptionRepository) RemoveForUser(ctx context.Context, userID, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error
}
