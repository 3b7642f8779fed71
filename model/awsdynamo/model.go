package awsdynamo

import (
	"camper/model"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// Table names, prefixed with DynamoModel.Prefix.
const (
	TableUser    = "user"
	TableStory   = "story"
	TableComment = "comment"
)

// Secondary indexes.
const (
	IndexEmail      = "EmailIndex"
	IndexUsername   = "UsernameIndex"
	IndexResetToken = "ResetTokenIndex"
	IndexAuthor     = "AuthorIndex"
)

type DynamoModel struct {
	db          dynamodbiface.DynamoDBAPI
	prefix      string
	userPeer    *DynamoUserPeer
	storyPeer   *DynamoStoryPeer
	commentPeer *DynamoCommentPeer
}

func NewModelFromSession(s *session.Session, prefix string) *DynamoModel {
	return NewModel(dynamodb.New(s), prefix)
}

// NewModel wires the peers to any DynamoDB client.
func NewModel(db dynamodbiface.DynamoDBAPI, prefix string) *DynamoModel {
	m := &DynamoModel{
		db:     db,
		prefix: prefix,
	}
	m.userPeer = &DynamoUserPeer{
		model: m,
	}
	m.storyPeer = &DynamoStoryPeer{
		model: m,
	}
	m.commentPeer = &DynamoCommentPeer{
		model: m,
	}
	return m
}

func (m *DynamoModel) table(name string) string {
	return m.prefix + name
}

func (m *DynamoModel) UserPeer() model.UserPeer {
	return m.userPeer
}

func (m *DynamoModel) StoryPeer() model.StoryPeer {
	return m.storyPeer
}

func (m *DynamoModel) CommentPeer() model.CommentPeer {
	return m.commentPeer
}
