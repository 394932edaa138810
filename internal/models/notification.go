package models

import "time"

// Notification is a persisted, one-way record that an actor performed a verb
// against a target. Immutable once created except for IsRead, which only the
// recipient may toggle.
type Notification struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	RecipientID     uint      `json:"recipient_id" gorm:"index:idx_notification_rec_read"`
	ActorID         uint      `json:"actor_id" gorm:"index"`
	Verb            string    `json:"verb" gorm:"size:255"`
	TargetType      string    `json:"target_type" gorm:"size:50"`
	TargetID        uint      `json:"target_id"`
	CreatedObjectID *uint     `json:"created_object_id"` // row that triggered this notification, when known
	IsRead          bool      `json:"is_read" gorm:"default:false;index:idx_notification_rec_read"`
	CreatedAt       time.Time `json:"created_at" gorm:"index:idx_notification_rec_read"`
}

type UpdateNotificationRequest struct {
	IsRead bool `json:"is_read"`
}
