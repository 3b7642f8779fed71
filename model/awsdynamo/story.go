package awsdynamo

import (
	"context"
	"time"

	"camper/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var slog *logrus.Entry

func init() {
	slog = logrus.New().WithFields(logrus.Fields{
		"env": "DynamoStoryPeer",
	})
}

type DynamoStoryPeer struct {
	model *DynamoModel
}

type storyItem struct {
	ID             string `dynamodbav:"id"`
	Headline       string `dynamodbav:"headline"`
	Link           string `dynamodbav:"link"`
	AuthorUID      string `dynamodbav:"author_uid"`
	AuthorUsername string `dynamodbav:"author_username"`
	AuthorPicture  string `dynamodbav:"author_picture"`
	CreatedAt      int64  `dynamodbav:"created_at"`
}

func marshalStory(s *model.Story, items map[string]*dynamodb.AttributeValue) error {
	if s == nil {
		return errors.New("Undefined story")
	}
	av, err := dynamodbattribute.MarshalMap(storyItem{
		ID:             s.ID,
		Headline:       s.Headline,
		Link:           s.Link,
		AuthorUID:      s.Author.UserID,
		AuthorUsername: s.Author.Username,
		AuthorPicture:  s.Author.Picture,
		CreatedAt:      s.CreatedAt.UnixNano(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal story")
	}
	for k, v := range av {
		items[k] = v
	}
	return nil
}

func unmarshalStory(s *model.Story, items map[string]*dynamodb.AttributeValue) error {
	if s == nil {
		return errors.New("Undefined story")
	}
	var it storyItem
	if err := dynamodbattribute.UnmarshalMap(items, &it); err != nil {
		return errors.Wrapf(err, "unmarshal story %v", items["id"])
	}
	s.ID = it.ID
	s.Headline = it.Headline
	s.Link = it.Link
	s.Author = model.Author{
		UserID:   it.AuthorUID,
		Username: it.AuthorUsername,
		Picture:  it.AuthorPicture,
	}
	s.CreatedAt = time.Unix(0, it.CreatedAt)
	return nil
}

func (sp *DynamoStoryPeer) getByAuthor(ctx context.Context, userID string, lastKey map[string]*dynamodb.AttributeValue) ([]*model.Story, error) {
	params := authorQuery(sp.model.table(TableStory), userID)
	if lastKey != nil {
		params.ExclusiveStartKey = lastKey
	}
	resp, err := sp.model.db.QueryWithContext(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "query stories of %s", userID)
	}
	stories := make([]*model.Story, 0, len(resp.Items))
	for _, item := range resp.Items {
		s := &model.Story{}
		if err := unmarshalStory(s, item); err != nil {
			slog.Warnf("Error unmarshal story: %s", err)
			continue
		}
		stories = append(stories, s)
	}
	if resp.LastEvaluatedKey != nil {
		more, err := sp.getByAuthor(ctx, userID, resp.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		stories = append(stories, more...)
	}
	return stories, nil
}

func (sp *DynamoStoryPeer) GetByAuthor(ctx context.Context, userID string) ([]*model.Story, error) {
	return sp.getByAuthor(ctx, userID, nil)
}

func (sp *DynamoStoryPeer) Save(ctx context.Context, s *model.Story) error {
	if s == nil {
		return errors.New("Story is nil")
	}
	items := make(map[string]*dynamodb.AttributeValue)
	if err := marshalStory(s, items); err != nil {
		return err
	}
	params := &dynamodb.PutItemInput{
		Item:      items,
		TableName: aws.String(sp.model.table(TableStory)),
	}
	if _, err := sp.model.db.PutItemWithContext(ctx, params); err != nil {
		return errors.Wrapf(err, "put story %s", s.ID)
	}
	return nil
}

func authorQuery(table, userID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(IndexAuthor),
		KeyConditionExpression: aws.String("author_uid = :uid"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":uid": {
				S: aws.String(userID),
			},
		},
	}
}
