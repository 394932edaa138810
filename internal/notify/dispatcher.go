// Package notify turns ledger mutations into persisted notifications and
// best-effort live pushes. Persistence happens inside the caller's
// transaction; delivery happens only after commit, and a missing or
// unreachable live channel never propagates as an error.
package notify

import (
	"fmt"
	"log"

	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/registry"
	"gorm.io/gorm"
)

// Verbs attached to notifications by the fan-out rules.
const (
	VerbLiked               = "liked"
	VerbCommented           = "commented"
	VerbStartedFollowing    = "started following"
	VerbAddedPost           = "added a new post"
	VerbSentInvitation      = "sent an invitation"
	VerbConfirmedInvitation = "confirmed the invitation"
	VerbAcceptedInvitation  = "accepted you into the organization"
	VerbRemovedMember       = "removed you from the organization"
)

// Publisher is the live channel transport contract. Publish reports whether
// anyone received the message and never errors.
type Publisher interface {
	Publish(group string, payload any) bool
}

// UserGroup names the live channel group carrying a user's notifications.
func UserGroup(userID uint) string {
	return fmt.Sprintf("notifications.user.%d", userID)
}

// LikeCounterGroup names the live channel group carrying like-count updates
// for one target.
func LikeCounterGroup(kindID, objectID uint) string {
	return fmt.Sprintf("like_counter:%d:%d", kindID, objectID)
}

// LikeCounterPayload is the wire shape of a like-count update.
func LikeCounterPayload(kind registry.Kind, objectID uint, total int64) map[string]any {
	return map[string]any{
		"reactable": map[string]any{
			"id":   objectID,
			"type": kind.Key(),
		},
		"total_likes": total,
	}
}

// Pending is an already-built live push waiting for the enclosing transaction
// to commit.
type Pending struct {
	Group   string
	Payload any
}

type classificationKey struct {
	targetType string
	verb       string
}

// Explicit (target kind, verb) -> type tag table; anything unlisted
// classifies as "unknown".
var notificationTypes = map[classificationKey]string{
	{"organization", VerbAcceptedInvitation}:  "organization_invite_accepted",
	{"organization", VerbSentInvitation}:      "organization_invite_sent",
	{"organization", VerbConfirmedInvitation}: "organization_invite_confirmed",
	{"organization", VerbRemovedMember}:       "organization_member_removed",
}

// Classify derives the payload "type" tag from a (target kind, verb) pair.
func Classify(targetType, verb string) string {
	if t, ok := notificationTypes[classificationKey{targetType: targetType, verb: verb}]; ok {
		return t
	}
	return "unknown"
}

// Dispatcher persists notifications and builds their live payloads.
type Dispatcher struct {
	registry *registry.Registry
	hub      Publisher
}

func NewDispatcher(reg *registry.Registry, hub Publisher) *Dispatcher {
	return &Dispatcher{registry: reg, hub: hub}
}

// Notify persists a notification inside tx and returns the pending live push
// for it. Notification creation is a side effect of the triggering operation:
// a failure here is logged and reported as !ok, never returned as an error.
func (d *Dispatcher) Notify(tx *gorm.DB, recipientID, actorID uint, verb, targetType string, targetID uint, createdObjectID *uint) (Pending, bool) {
	notification := &models.Notification{
		RecipientID:     recipientID,
		ActorID:         actorID,
		Verb:            verb,
		TargetType:      targetType,
		TargetID:        targetID,
		CreatedObjectID: createdObjectID,
	}
	if err := tx.Create(notification).Error; err != nil {
		log.Printf("notify: failed to persist notification for user %d: %v", recipientID, err)
		return Pending{}, false
	}

	return Pending{
		Group:   UserGroup(recipientID),
		Payload: d.BuildPayload(tx, notification),
	}, true
}

// BuildPayload serializes a notification for the live channel: actor summary,
// verb, target reference, a human-readable label when the kind resolves one,
// and the classified type tag.
func (d *Dispatcher) BuildPayload(db *gorm.DB, n *models.Notification) map[string]any {
	var actor models.UserCompact
	var user models.User
	if err := db.First(&user, n.ActorID).Error; err == nil {
		actor = user.ToCompact()
	} else {
		actor = models.UserCompact{ID: n.ActorID}
	}

	var targetLabel *string
	if kind, ok := d.registry.ByName(n.TargetType); ok {
		if label, ok := d.registry.ResolveLabel(db, kind, n.TargetID); ok {
			targetLabel = &label
		}
	}

	return map[string]any{
		"id":                n.ID,
		"actor":             actor,
		"verb":              n.Verb,
		"target_type":       n.TargetType,
		"target_id":         n.TargetID,
		"created_object_id": n.CreatedObjectID,
		"target_label":      targetLabel,
		"type":              Classify(n.TargetType, n.Verb),
		"is_read":           n.IsRead,
		"created_at":        n.CreatedAt,
	}
}

// Deliver pushes one pending payload. Transport unavailability is swallowed:
// persistence is the durability guarantee, the live push is an optimization.
func (d *Dispatcher) Deliver(p Pending) bool {
	if d.hub == nil {
		return false
	}
	return d.hub.Publish(p.Group, p.Payload)
}

// Flush delivers every pending push, post-commit.
func (d *Dispatcher) Flush(pending []Pending) {
	for _, p := range pending {
		d.Deliver(p)
	}
}
