package resources

import (
	"context"

	"camper/model"

	"golang.org/x/sync/errgroup"
)

const saveConcurrency = 8

// UpdateAuthorPictures rewrites the author name and picture kept on every
// story and comment of userID. Both collections are fetched in parallel and
// all documents are then saved in parallel; the first error wins.
func UpdateAuthorPictures(ctx context.Context, stories model.StoryPeer, comments model.CommentPeer, userID, picture, username string) error {
	var foundStories []*model.Story
	var foundComments []*model.Comment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		foundStories, err = stories.GetByAuthor(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		foundComments, err = comments.GetByAuthor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(saveConcurrency)
	for _, c := range foundComments {
		c := c
		c.Author.Picture = picture
		c.Author.Username = username
		g.Go(func() error {
			return comments.Save(gctx, c)
		})
	}
	for _, s := range foundStories {
		s := s
		s.Author.Picture = picture
		s.Author.Username = username
		g.Go(func() error {
			return stories.Save(gctx, s)
		})
	}
	return g.Wait()
}
