package model

import (
	"context"
	"time"
)

// Author is the copy of the author's public fields kept on stories and comments.
type Author struct {
	UserID   string
	Username string
	Picture  string
}

// StoryPeer defines interactions with the story data.
type StoryPeer interface {
	GetByAuthor(ctx context.Context, userID string) ([]*Story, error)
	Save(ctx context.Context, s *Story) error
}

// Story is a news item posted by a user.
type Story struct {
	ID        string
	Headline  string
	Link      string
	Author    Author
	CreatedAt time.Time
}
