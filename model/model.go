package model

import "errors"

// ErrNotFound is returned by every peer when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// Model defines the document model consisting of `user`, `story` and `comment`.
type Model interface {
	UserPeer() UserPeer
	StoryPeer() StoryPeer
	CommentPeer() CommentPeer
}
