package mongodb

import (
	"context"
	"time"

	"camper/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type authorDoc struct {
	UserID   string `bson:"user_id"`
	Username string `bson:"username"`
	Picture  string `bson:"picture"`
}

type storyDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Headline  string             `bson:"headline"`
	Link      string             `bson:"link"`
	Author    authorDoc          `bson:"author"`
	CreatedAt time.Time          `bson:"created_at"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	StoryID   string             `bson:"story_id"`
	Body      string             `bson:"body"`
	Author    authorDoc          `bson:"author"`
	CreatedAt time.Time          `bson:"created_at"`
}

type MongoStoryPeer struct {
	coll *mongo.Collection
}

type MongoCommentPeer struct {
	coll *mongo.Collection
}

func byAuthor(userID string) bson.M {
	return bson.M{"author.user_id": userID}
}

// upsert replaces the document with the same _id, inserting it when missing.
func upsert(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

func (sp *MongoStoryPeer) GetByAuthor(ctx context.Context, userID string) ([]*model.Story, error) {
	cur, err := sp.coll.Find(ctx, byAuthor(userID))
	if err != nil {
		return nil, errors.Wrapf(err, "find stories of %s", userID)
	}
	var docs []storyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode stories of %s", userID)
	}
	stories := make([]*model.Story, len(docs))
	for i, d := range docs {
		stories[i] = &model.Story{
			ID:        d.ID.Hex(),
			Headline:  d.Headline,
			Link:      d.Link,
			Author:    model.Author(d.Author),
			CreatedAt: d.CreatedAt,
		}
	}
	return stories, nil
}

func (sp *MongoStoryPeer) Save(ctx context.Context, s *model.Story) error {
	oid, err := primitive.ObjectIDFromHex(s.ID)
	if err != nil {
		return errors.Wrapf(err, "story id %q", s.ID)
	}
	d := storyDoc{
		ID:        oid,
		Headline:  s.Headline,
		Link:      s.Link,
		Author:    authorDoc(s.Author),
		CreatedAt: s.CreatedAt,
	}
	if err := upsert(ctx, sp.coll, oid, d); err != nil {
		return errors.Wrapf(err, "save story %s", s.ID)
	}
	return nil
}

func (cp *MongoCommentPeer) GetByAuthor(ctx context.Context, userID string) ([]*model.Comment, error) {
	cur, err := cp.coll.Find(ctx, byAuthor(userID))
	if err != nil {
		return nil, errors.Wrapf(err, "find comments of %s", userID)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode comments of %s", userID)
	}
	comments := make([]*model.Comment, len(docs))
	for i, d := range docs {
		comments[i] = &model.Comment{
			ID:        d.ID.Hex(),
			StoryID:   d.StoryID,
			Body:      d.Body,
			Author:    model.Author(d.Author),
			CreatedAt: d.CreatedAt,
		}
	}
	return comments, nil
}

func (cp *MongoCommentPeer) Save(ctx context.Context, c *model.Comment) error {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return errors.Wrapf(err, "comment id %q", c.ID)
	}
	d := commentDoc{
		ID:        oid,
		StoryID:   c.StoryID,
		Body:      c.Body,
		Author:    authorDoc(c.Author),
		CreatedAt: c.CreatedAt,
	}
	if err := upsert(ctx, cp.coll, oid, d); err != nil {
		return errors.Wrapf(err, "save comment %s", c.ID)
	}
	return nil
}
