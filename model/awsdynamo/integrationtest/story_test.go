package integrationtest

import (
	"context"
	"testing"
	"time"

	"camper/model"

	"github.com/stretchr/testify/assert"
)

func TestStoriesAndCommentsByAuthor(t *testing.T) {
	assert := assert.New(t)
	setup()
	ctx := context.Background()
	author := model.Author{UserID: "author1", Username: "writer", Picture: "pic"}
	for _, id := range []string{"s1", "s2"} {
		s := &model.Story{ID: id, Headline: "Story " + id, Author: author, CreatedAt: time.Now()}
		if err := mmodel.StoryPeer().Save(ctx, s); err != nil {
			t.Fatalf("Error saving story: %s\n", err)
		}
	}
	c := &model.Comment{ID: "c1", StoryID: "s1", Body: "First", Author: author, CreatedAt: time.Now()}
	if err := mmodel.CommentPeer().Save(ctx, c); err != nil {
		t.Fatalf("Error saving comment: %s\n", err)
	}

	stories, err := mmodel.StoryPeer().GetByAuthor(ctx, "author1")
	assert.NoError(err)
	assert.Len(stories, 2)
	comments, err := mmodel.CommentPeer().GetByAuthor(ctx, "author1")
	assert.NoError(err)
	if assert.Len(comments, 1) {
		assert.Equal(author, comments[0].Author)
	}
}
