package model

import (
	"context"
	"time"
)

// CommentPeer defines interactions with the comment data.
type CommentPeer interface {
	GetByAuthor(ctx context.Context, userID string) ([]*Comment, error)
	Save(ctx context.Context, c *Comment) error
}

// Comment is a reply to a story.
type Comment struct {
	ID        string
	StoryID   string
	Body      string
	Author    Author
	CreatedAt time.Time
}
