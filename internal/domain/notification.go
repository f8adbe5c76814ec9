package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationKindPageShared    NotificationKind = "page_shared"
	NotificationKindPageMentioned NotificationKind = "page_mentioned"
	NotificationKindSpaceInvited  NotificationKind = "space_invited"
	NotificationKindCommentAdded  NotificationKind = "comment_added"
	NotificationKindSystem        NotificationKind = "system"
)

func ParseNotificationKind(s string) (NotificationKind, error) {
	switch k := NotificationKind(s); k {
	case NotificationKindPageShared,
		NotificationKindPageMentioned,
		NotificationKindSpaceInvited,
		NotificationKindCommentAdded,
		NotificationKindSystem:
		return k, nil
	default:
		return "", fmt.Errorf("unknown notification kind %q", s)
	}
}

// Notification is a message addressed to one user. Link points at the page,
// space or comment it refers to.
type Notification struct {
	ID        uuid.UUID
	UserID    string
	Kind      NotificationKind
	Title     string
	Body      string
	Link      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Cursor returns the position right after n in the user's notification feed.
func (n *Notification) Cursor() Cursor {
	return Cursor{CreatedAt: n.CreatedAt, ID: n.ID.String()}
}

// NotificationPage is one page of a user's feed, newest first.
type NotificationPage struct {
	Items       []*Notification
	HasMore     bool
	NextCursor  string
	UnreadCount int
}
