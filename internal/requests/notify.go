// internal/requests/notify.go
package requests

import (
	"fmt"

	"github.com/google/uuid"

	"stockroom/internal/directory"
	"stockroom/internal/notifications"
)

// notificationsForCreate derives one notification per reviewer other than
// the requester when a request is submitted.
func notificationsForCreate(req *ItemRequest, reviewers []*directory.User) []*notifications.Notification {
	var out []*notifications.Notification
	for _, reviewer := range reviewers {
		if reviewer.ID == req.UserID {
			continue
		}
		id := req.ID
		out = append(out, &notifications.Notification{
			ID:            uuid.New(),
			UserID:        reviewer.ID,
			Type:          notifications.TypeRequestSubmitted,
			Message:       fmt.Sprintf("New request: %q requires your review", req.Title),
			RelatedItemID: &id,
		})
	}
	return out
}

// notificationForTransition derives the requester's notification for an
// approval or rejection. Returns nil when the actor is the requester or
// the transition has no notification.
func notificationForTransition(req *ItemRequest, in TransitionInput) *notifications.Notification {
	if in.Actor == req.UserID {
		return nil
	}

	var (
		typ     notifications.Type
		message string
	)
	switch in.Target {
	case StatusApproved:
		typ = notifications.TypeRequestApproved
		message = fmt.Sprintf("Your request %q has been approved", req.Title)
	case StatusRejected:
		typ = notifications.TypeRequestRejected
		message = fmt.Sprintf("Your request %q has been rejected: %s", req.Title, in.Reason)
	default:
		return nil
	}

	id := req.ID
	return &notifications.Notification{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Type:          typ,
		Message:       message,
		RelatedItemID: &id,
	}
}

// notificationForComment derives the owner's notification for a new
// comment. Returns nil when the commenter owns the request.
func notificationForComment(req *ItemRequest, comment *Comment) *notifications.Notification {
	if comment.UserID == req.UserID {
		return nil
	}

	id := req.ID
	return &notifications.Notification{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Type:          notifications.TypeCommentAdded,
		Message:       fmt.Sprintf("New comment on your request %q", req.Title),
		RelatedItemID: &id,
	}
}
