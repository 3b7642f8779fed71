// Package mongodb stores the model in MongoDB.
package mongodb

import (
	"context"

	"camper/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	CollectionUsers    = "users"
	CollectionStories  = "stories"
	CollectionComments = "comments"
)

type MongoModel struct {
	client      *mongo.Client
	db          *mongo.Database
	userPeer    *MongoUserPeer
	storyPeer   *MongoStoryPeer
	commentPeer *MongoCommentPeer
}

// Connect dials uri and returns a model over database.
func Connect(ctx context.Context, uri, database string) (*MongoModel, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ping mongodb")
	}
	return NewModel(client, database), nil
}

func NewModel(client *mongo.Client, database string) *MongoModel {
	m := &MongoModel{
		client: client,
		db:     client.Database(database),
	}
	m.userPeer = &MongoUserPeer{coll: m.db.Collection(CollectionUsers)}
	m.storyPeer = &MongoStoryPeer{coll: m.db.Collection(CollectionStories)}
	m.commentPeer = &MongoCommentPeer{coll: m.db.Collection(CollectionComments)}
	return m
}

func (m *MongoModel) UserPeer() model.UserPeer {
	return m.userPeer
}

func (m *MongoModel) StoryPeer() model.StoryPeer {
	return m.storyPeer
}

func (m *MongoModel) CommentPeer() model.CommentPeer {
	return m.commentPeer
}

// EnsureIndexes creates the lookup indexes. Email and username are unique.
func (m *MongoModel) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true).SetSparse(true)
	_, err := m.db.Collection(CollectionUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email_key", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "username_key", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return errors.Wrap(err, "create user indexes")
	}
	for _, name := range []string{CollectionStories, CollectionComments} {
		_, err := m.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "author.user_id", Value: 1}},
		})
		if err != nil {
			return errors.Wrapf(err, "create %s author index", name)
		}
	}
	return nil
}

func (m *MongoModel) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// objectID parses a hex id; malformed ids cannot match any document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, model.ErrNotFound
	}
	return oid, nil
}

func findError(err error, what string) error {
	if err == mongo.ErrNoDocuments {
		return model.ErrNotFound
	}
	return errors.Wrap(err, what)
}
