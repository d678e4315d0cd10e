// Package domain defines the authentication and audit domain models: audit events and
// their kinds, the resolved request identity, session token claims and auth errors.
package domain

import (
	"github.com/voces/voces/internal/errors"
)

// EventKind names a security-relevant action recorded in the audit ledger.
type EventKind string

const (
	EventLogin                 EventKind = "Login"
	EventLogout                EventKind = "Logout"
	EventRegistrationSucceeded EventKind = "RegistrationSucceeded"
	EventFailedLoginAttempt    EventKind = "FailedLoginAttempt"
	EventProfileUpdated        EventKind = "ProfileUpdated"
	EventPasswordChanged       EventKind = "PasswordChanged"
	EventEmailVerified         EventKind = "EmailVerified"
	EventPostCreated           EventKind = "PostCreated"
	EventPostEdited            EventKind = "PostEdited"
	EventPostDeleted           EventKind = "PostDeleted"
	EventReviewCreated         EventKind = "ReviewCreated"
	EventReviewEdited          EventKind = "ReviewEdited"
	EventReviewDeleted         EventKind = "ReviewDeleted"
	EventCommentCreated        EventKind = "CommentCreated"
	EventCommentDeleted        EventKind = "CommentDeleted"
	EventLike                  EventKind = "Like"
	EventUnlike                EventKind = "Unlike"
	EventShare                 EventKind = "Share"
	EventFollow                EventKind = "Follow"
	EventUnfollow              EventKind = "Unfollow"
	EventSurveyAnswered        EventKind = "SurveyAnswered"
	EventContentReported       EventKind = "ContentReported"
	EventModerationAction      EventKind = "ModerationAction"
	EventSystemError           EventKind = "SystemError"
	EventUnauthorizedAccess    EventKind = "UnauthorizedAccess"
)

// EventKinds is the closed catalogue of recordable kinds, in declaration order.
var EventKinds = []EventKind{
	EventLogin,
	EventLogout,
	EventRegistrationSucceeded,
	EventFailedLoginAttempt,
	EventProfileUpdated,
	EventPasswordChanged,
	EventEmailVerified,
	EventPostCreated,
	EventPostEdited,
	EventPostDeleted,
	EventReviewCreated,
	EventReviewEdited,
	EventReviewDeleted,
	EventCommentCreated,
	EventCommentDeleted,
	EventLike,
	EventUnlike,
	EventShare,
	EventFollow,
	EventUnfollow,
	EventSurveyAnswered,
	EventContentReported,
	EventModerationAction,
	EventSystemError,
	EventUnauthorizedAccess,
}

// ErrInvalidEventKind indicates a kind outside the catalogue.
var ErrInvalidEventKind = errors.Wrap(errors.ErrInvalidInput, "invalid event kind")

// IsValid reports whether k belongs to the catalogue.
func (k EventKind) IsValid() bool {
	for _, known := range EventKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseEventKind converts a stored or user-supplied name into an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(s)
	if !k.IsValid() {
		return "", errors.Wrapf(ErrInvalidEventKind, "%q", s)
	}
	return k, nil
}
