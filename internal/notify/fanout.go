package notify

import (
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/registry"
	"gorm.io/gorm"
)

// Fan-out is a pure event-reaction table: (source ledger, target kind) ->
// (recipient rule, verb, skip-self). Resolution failures (a target row that
// vanished under a concurrent delete, an unregistered owner) silently skip
// the notification: it is a side effect, never part of the triggering
// operation's contract.
type Fanout struct {
	dispatcher *Dispatcher
	registry   *registry.Registry
}

func NewFanout(dispatcher *Dispatcher, reg *registry.Registry) *Fanout {
	return &Fanout{dispatcher: dispatcher, registry: reg}
}

// Kinds whose owner is notified when a LIKE lands on them.
var likeNotifiableKinds = map[uint]bool{
	registry.KindAnimalID: true,
	registry.KindPostID:   true,
}

// Kinds whose author is notified when a comment lands on them.
var commentNotifiableKinds = map[uint]bool{
	registry.KindPostID:    true,
	registry.KindArticleID: true,
}

// Dispatcher exposes the wrapped dispatcher for delivery flushing.
func (f *Fanout) Dispatcher() *Dispatcher {
	return f.dispatcher
}

// Flush delivers pending pushes after the enclosing transaction commits.
func (f *Fanout) Flush(pending []Pending) {
	f.dispatcher.Flush(pending)
}

// notifyOwner resolves the target's owner and dispatches a single
// notification, applying the skip-self rule.
func (f *Fanout) notifyOwner(tx *gorm.DB, actorID uint, verb string, kind registry.Kind, targetID uint, createdObjectID *uint) []Pending {
	ownerID, ok := f.registry.ResolveOwner(tx, kind, targetID)
	if !ok || ownerID == 0 {
		return nil
	}
	if ownerID == actorID {
		return nil
	}
	p, ok := f.dispatcher.Notify(tx, ownerID, actorID, verb, kind.Name, targetID, createdObjectID)
	if !ok {
		return nil
	}
	return []Pending{p}
}

func (f *Fanout) likeCounterUpdate(tx *gorm.DB, kind registry.Kind, objectID uint) (Pending, bool) {
	var total int64
	err := tx.Model(&models.Reaction{}).
		Where("reaction_type = ? AND reactable_type_id = ? AND reactable_id = ?",
			models.ReactionLike, kind.ID, objectID).
		Count(&total).Error
	if err != nil {
		return Pending{}, false
	}
	return Pending{
		Group:   LikeCounterGroup(kind.ID, objectID),
		Payload: LikeCounterPayload(kind, objectID, total),
	}, true
}

// ReactionSaved handles a created or type-changed reaction. previousType is
// empty for creates. The live counter refreshes whenever a LIKE enters or
// leaves the picture; the owner notification fires only for new LIKEs.
func (f *Fanout) ReactionSaved(tx *gorm.DB, reaction *models.Reaction, previousType string) []Pending {
	if reaction.ReactionType != models.ReactionLike && previousType != models.ReactionLike {
		return nil
	}

	kind, err := f.registry.Resolve(reaction.ReactableTypeID)
	if err != nil {
		return nil
	}

	var pending []Pending
	if p, ok := f.likeCounterUpdate(tx, kind, reaction.ReactableID); ok {
		pending = append(pending, p)
	}

	if reaction.ReactionType == models.ReactionLike && reaction.UserID != nil && likeNotifiableKinds[kind.ID] {
		id := reaction.ID
		pending = append(pending, f.notifyOwner(tx, *reaction.UserID, VerbLiked, kind, reaction.ReactableID, &id)...)
	}
	return pending
}

// ReactionDeleted refreshes the live counter after an unlike. No notification
// is retracted; the persisted record stands.
func (f *Fanout) ReactionDeleted(tx *gorm.DB, reaction *models.Reaction) []Pending {
	if reaction.ReactionType != models.ReactionLike {
		return nil
	}
	kind, err := f.registry.Resolve(reaction.ReactableTypeID)
	if err != nil {
		return nil
	}
	if p, ok := f.likeCounterUpdate(tx, kind, reaction.ReactableID); ok {
		return []Pending{p}
	}
	return nil
}

// CommentCreated notifies the author of the commented post or article.
func (f *Fanout) CommentCreated(tx *gorm.DB, comment *models.Comment) []Pending {
	if comment.UserID == nil {
		return nil
	}
	kind, err := f.registry.Resolve(comment.ContentTypeID)
	if err != nil || !commentNotifiableKinds[kind.ID] {
		return nil
	}
	id := comment.ID
	return f.notifyOwner(tx, *comment.UserID, VerbCommented, kind, comment.ObjectID, &id)
}

// FollowCreated notifies the owner of the followed animal or organization.
func (f *Fanout) FollowCreated(tx *gorm.DB, follow *models.Follow) []Pending {
	kind, err := f.registry.Resolve(follow.TargetTypeID)
	if err != nil {
		return nil
	}
	id := follow.ID
	return f.notifyOwner(tx, follow.UserID, VerbStartedFollowing, kind, follow.TargetID, &id)
}

// PostCreated is the one-to-many case: every follower of the post's parent
// whose "posts" preference is on gets a notification, except the author.
func (f *Fanout) PostCreated(tx *gorm.DB, post *models.Post) []Pending {
	var kind registry.Kind
	var targetID uint
	switch {
	case post.AnimalID != nil:
		k, err := f.registry.Resolve(registry.KindAnimalID)
		if err != nil {
			return nil
		}
		kind, targetID = k, *post.AnimalID
	case post.OrganizationID != nil:
		k, err := f.registry.Resolve(registry.KindOrganizationID)
		if err != nil {
			return nil
		}
		kind, targetID = k, *post.OrganizationID
	default:
		return nil
	}

	var followers []models.Follow
	if err := tx.Where("target_type_id = ? AND target_id = ?", kind.ID, targetID).Find(&followers).Error; err != nil {
		return nil
	}

	var pending []Pending
	postID := post.ID
	for _, follower := range followers {
		if !follower.NotificationPreferences.Posts {
			continue
		}
		if follower.UserID == post.AuthorID {
			continue
		}
		if p, ok := f.dispatcher.Notify(tx, follower.UserID, post.AuthorID, VerbAddedPost, kind.Name, targetID, &postID); ok {
			pending = append(pending, p)
		}
	}
	return pending
}

// membershipNotify is the shared path for organization membership events.
func (f *Fanout) membershipNotify(tx *gorm.DB, recipientID, actorID uint, verb string, orgID uint, memberID uint) []Pending {
	if recipientID == 0 || recipientID == actorID {
		return nil
	}
	id := memberID
	p, ok := f.dispatcher.Notify(tx, recipientID, actorID, verb, "organization", orgID, &id)
	if !ok {
		return nil
	}
	return []Pending{p}
}

func (f *Fanout) organizationOwner(tx *gorm.DB, orgID uint) uint {
	var org models.Organization
	if err := tx.First(&org, orgID).Error; err != nil {
		return 0
	}
	return org.UserID
}

// MemberInvited notifies the organization's owner about a new invitation.
func (f *Fanout) MemberInvited(tx *gorm.DB, member *models.OrganizationMember, actorID uint) []Pending {
	owner := f.organizationOwner(tx, member.OrganizationID)
	return f.membershipNotify(tx, owner, actorID, VerbSentInvitation, member.OrganizationID, member.ID)
}

// MemberConfirmed notifies the organization's owner that the invited user
// confirmed.
func (f *Fanout) MemberConfirmed(tx *gorm.DB, member *models.OrganizationMember) []Pending {
	owner := f.organizationOwner(tx, member.OrganizationID)
	return f.membershipNotify(tx, owner, member.UserID, VerbConfirmedInvitation, member.OrganizationID, member.ID)
}

// MemberAccepted notifies the invited user that they were accepted.
func (f *Fanout) MemberAccepted(tx *gorm.DB, member *models.OrganizationMember, actorID uint) []Pending {
	return f.membershipNotify(tx, member.UserID, actorID, VerbAcceptedInvitation, member.OrganizationID, member.ID)
}

// MemberRemoved notifies the removed user.
func (f *Fanout) MemberRemoved(tx *gorm.DB, member *models.OrganizationMember, actorID uint) []Pending {
	return f.membershipNotify(tx, member.UserID, actorID, VerbRemovedMember, member.OrganizationID, member.ID)
}
