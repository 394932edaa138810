package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationPreferences is the fixed-shape preference bundle stored with a
// follow. Unknown keys are rejected at the API boundary before this struct is
// ever populated.
type NotificationPreferences struct {
	Posts         bool `json:"posts"`
	StatusChanges bool `json:"status_changes"`
	Comments      bool `json:"comments"`
}

// DefaultNotificationPreferences returns the preference bundle applied when a
// follow is created without explicit preferences.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Posts:         true,
		StatusChanges: true,
		Comments:      false,
	}
}

// Value implements driver.Valuer so the bundle persists as a JSON column.
func (p NotificationPreferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *NotificationPreferences) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = DefaultNotificationPreferences()
		return nil
	default:
		return fmt.Errorf("unsupported notification preferences column type %T", value)
	}
}

// Follow records a user's subscription to an entity's update stream.
// At most one row may exist per (user, target).
type Follow struct {
	ID                      uint                    `json:"id" gorm:"primaryKey"`
	UserID                  uint                    `json:"user_id" gorm:"index;uniqueIndex:idx_user_follow_target"`
	TargetTypeID            uint                    `json:"target_type" gorm:"index:idx_follow_target;uniqueIndex:idx_user_follow_target"`
	TargetID                uint                    `json:"target_id" gorm:"index:idx_follow_target;uniqueIndex:idx_user_follow_target"`
	NotificationPreferences NotificationPreferences `json:"notification_preferences" gorm:"type:text"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
	DeletedAt               *time.Time              `json:"deleted_at,omitempty"`
}

// CreateFollowRequest accepts preferences as a loose map so unknown keys can
// be rejected and omitted keys can fall back to defaults.
type CreateFollowRequest struct {
	TargetType              any             `json:"target_type" validate:"required"`
	TargetID                uint            `json:"target_id" validate:"required"`
	NotificationPreferences map[string]bool `json:"notification_preferences,omitempty"`
}

type UpdateFollowRequest struct {
	NotificationPreferences map[string]bool `json:"notification_preferences" validate:"required"`
}
