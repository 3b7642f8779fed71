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

var clog *logrus.Entry

func init() {
	clog = logrus.New().WithFields(logrus.Fields{
		"env": "DynamoCommentPeer",
	})
}

type DynamoCommentPeer struct {
	model *DynamoModel
}

type commentItem struct {
	ID             string `dynamodbav:"id"`
	StoryID        string `dynamodbav:"story_id"`
	Body           string `dynamodbav:"body"`
	AuthorUID      string `dynamodbav:"author_uid"`
	AuthorUsername string `dynamodbav:"author_username"`
	AuthorPicture  string `dynamodbav:"author_picture"`
	CreatedAt      int64  `dynamodbav:"created_at"`
}

func marshalComment(c *model.Comment, items map[string]*dynamodb.AttributeValue) error {
	if c == nil {
		return errors.New("Undefined comment")
	}
	av, err := dynamodbattribute.MarshalMap(commentItem{
		ID:             c.ID,
		StoryID:        c.StoryID,
		Body:           c.Body,
		AuthorUID:      c.Author.UserID,
		AuthorUsername: c.Author.Username,
		AuthorPicture:  c.Author.Picture,
		CreatedAt:      c.CreatedAt.UnixNano(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal comment")
	}
	for k, v := range av {
		items[k] = v
	}
	return nil
}

func unmarshalComment(c *model.Comment, items map[string]*dynamodb.AttributeValue) error {
	if c == nil {
		return errors.New("Undefined comment")
	}
	var it commentItem
	if err := dynamodbattribute.UnmarshalMap(items, &it); err != nil {
		return errors.Wrapf(err, "unmarshal comment %v", items["id"])
	}
	c.ID = it.ID
	c.StoryID = it.StoryID
	c.Body = it.Body
	c.Author = model.Author{
		UserID:   it.AuthorUID,
		Username: it.AuthorUsername,
		Picture:  it.AuthorPicture,
	}
	c.CreatedAt = time.Unix(0, it.CreatedAt)
	return nil
}

func (cp *DynamoCommentPeer) GetByAuthor(ctx context.Context, userID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	params := authorQuery(cp.model.table(TableComment), userID)
	err := cp.model.db.QueryPagesWithContext(ctx, params, func(page *dynamodb.QueryOutput, last bool) bool {
		for _, item := range page.Items {
			c := &model.Comment{}
			if err := unmarshalComment(c, item); err != nil {
				clog.Warnf("Error unmarshal comment: %s", err)
				continue
			}
			comments = append(comments, c)
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "query comments of %s", userID)
	}
	return comments, nil
}

func (cp *DynamoCommentPeer) Save(ctx context.Context, c *model.Comment) error {
	if c == nil {
		return errors.New("Comment is nil")
	}
	items := make(map[string]*dynamodb.AttributeValue)
	if err := marshalComment(c, items); err != nil {
		return err
	}
	params := &dynamodb.PutItemInput{
		Item:      items,
		TableName: aws.String(cp.model.table(TableComment)),
	}
	if _, err := cp.model.db.PutItemWithContext(ctx, params); err != nil {
		return errors.Wrapf(err, "put comment %s", c.ID)
	}
	return nil
}
