package awsdynamo

import (
	"context"
	"strconv"
	"time"

	"camper/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

var ulog *logrus.Entry

func init() {
	ulog = logrus.New().WithFields(logrus.Fields{
		"env": "DynamoUserPeer",
	})
}

type DynamoUserPeer struct {
	model *DynamoModel
}

type profileItem struct {
	Username        string `dynamodbav:"username"`
	Name            string `dynamodbav:"name"`
	Location        string `dynamodbav:"location"`
	GithubProfile   string `dynamodbav:"github"`
	FacebookProfile string `dynamodbav:"facebook"`
	LinkedinProfile string `dynamodbav:"linkedin"`
	CodepenProfile  string `dynamodbav:"codepen"`
	TwitterHandle   string `dynamodbav:"twitter"`
	Bio             string `dynamodbav:"bio"`
	Picture         string `dynamodbav:"picture"`
}

type websiteItem struct {
	Title string `dynamodbav:"title"`
	Link  string `dynamodbav:"link"`
	Image string `dynamodbav:"image"`
}

type challengeItem struct {
	ID            string `dynamodbav:"id"`
	Name          string `dynamodbav:"name"`
	ChallengeType int    `dynamodbav:"type"`
	CompletedDate int64  `dynamodbav:"completed"`
}

type tokenItem struct {
	Kind        string `dynamodbav:"kind"`
	AccessToken string `dynamodbav:"access_token"`
}

// userItem is the stored form of a user. The *_key attributes are the
// lower-cased values the secondary indexes are built on.
type userItem struct {
	ID                  string            `dynamodbav:"id"`
	Email               string            `dynamodbav:"email,omitempty"`
	EmailKey            string            `dynamodbav:"email_key,omitempty"`
	UsernameKey         string            `dynamodbav:"username_key,omitempty"`
	Password            string            `dynamodbav:"password,omitempty"`
	Profile             profileItem       `dynamodbav:"profile"`
	Portfolio           []websiteItem     `dynamodbav:"portfolio"`
	ProgressTimestamps  []int64           `dynamodbav:"progress_timestamps"`
	CompletedChallenges []challengeItem   `dynamodbav:"completed_challenges"`
	LongestStreak       int               `dynamodbav:"longest_streak"`
	CurrentStreak       int               `dynamodbav:"current_streak"`
	ResetToken          string            `dynamodbav:"reset_token,omitempty"`
	ResetExpires        int64             `dynamodbav:"reset_expires,omitempty"`
	OAuthIDs            map[string]string `dynamodbav:"oauth_ids,omitempty"`
	OAuthKeys           []string          `dynamodbav:"oauth_keys,stringset,omitempty"`
	Tokens              []tokenItem       `dynamodbav:"tokens"`
	CreatedAt           int64             `dynamodbav:"created_at"`
	LastLogin           int64             `dynamodbav:"lastlogin"`
}

func oauthKey(provider, id string) string {
	return provider + ":" + id
}

func marshalUser(u *model.User, items map[string]*dynamodb.AttributeValue) error {
	if u == nil {
		return errors.New("Undefined user")
	}
	it := userItem{
		ID:                 u.ID,
		Email:              u.Email,
		EmailKey:           model.NormalizeKey(u.Email),
		UsernameKey:        model.NormalizeKey(u.Profile.Username),
		Password:           u.PasswordHash,
		Profile:            profileItem(u.Profile),
		ProgressTimestamps: u.ProgressTimestamps,
		LongestStreak:      u.LongestStreak,
		CurrentStreak:      u.CurrentStreak,
		ResetToken:         u.ResetPasswordToken,
		OAuthIDs:           u.OAuthIDs,
		CreatedAt:          u.CreatedAt.Unix(),
		LastLogin:          u.LastLogin.Unix(),
	}
	if it.ResetToken != "" {
		it.ResetExpires = u.ResetPasswordExpires.UnixNano() / int64(time.Millisecond)
	}
	for _, w := range u.Portfolio.Websites {
		it.Portfolio = append(it.Portfolio, websiteItem(w))
	}
	for _, c := range u.CompletedChallenges {
		it.CompletedChallenges = append(it.CompletedChallenges, challengeItem(c))
	}
	for _, t := range u.Tokens {
		it.Tokens = append(it.Tokens, tokenItem(t))
	}
	for provider, id := range u.OAuthIDs {
		it.OAuthKeys = append(it.OAuthKeys, oauthKey(provider, id))
	}
	av, err := dynamodbattribute.MarshalMap(it)
	if err != nil {
		return errors.Wrap(err, "marshal user")
	}
	for k, v := range av {
		items[k] = v
	}
	return nil
}

func unmarshalUser(u *model.User, items map[string]*dynamodb.AttributeValue) error {
	if u == nil {
		return errors.New("Undefined user")
	}
	var it userItem
	if err := dynamodbattribute.UnmarshalMap(items, &it); err != nil {
		return errors.Wrapf(err, "unmarshal user %v", items["id"])
	}
	u.ID = it.ID
	u.Email = it.Email
	u.PasswordHash = it.Password
	u.Profile = model.Profile(it.Profile)
	u.ProgressTimestamps = it.ProgressTimestamps
	u.LongestStreak = it.LongestStreak
	u.CurrentStreak = it.CurrentStreak
	u.ResetPasswordToken = it.ResetToken
	u.ResetPasswordExpires = time.Time{}
	if it.ResetExpires != 0 {
		u.ResetPasswordExpires = time.Unix(0, it.ResetExpires*int64(time.Millisecond))
	}
	u.OAuthIDs = it.OAuthIDs
	u.CreatedAt = time.Unix(it.CreatedAt, 0)
	u.LastLogin = time.Unix(it.LastLogin, 0)
	u.Portfolio = model.Portfolio{}
	for i, w := range it.Portfolio {
		if i >= len(u.Portfolio.Websites) {
			ulog.Warnf("Dropping extra portfolio entry on %s", it.ID)
			break
		}
		u.Portfolio.Websites[i] = model.Website(w)
	}
	u.CompletedChallenges = nil
	for _, c := range it.CompletedChallenges {
		u.CompletedChallenges = append(u.CompletedChallenges, model.CompletedChallenge(c))
	}
	u.Tokens = nil
	for _, t := range it.Tokens {
		u.Tokens = append(u.Tokens, model.Token(t))
	}
	return nil
}

func (p *DynamoUserPeer) newUser(items map[string]*dynamodb.AttributeValue) (*model.User, error) {
	u := &model.User{
		Peer: p,
	}
	if err := unmarshalUser(u, items); err != nil {
		return nil, err
	}
	return u, nil
}

func (p *DynamoUserPeer) GetByID(ctx context.Context, id string) (*model.User, error) {
	params := &dynamodb.GetItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"id": { // Required
				S: aws.String(id),
			},
		},
		TableName:      aws.String(p.model.table(TableUser)),
		ConsistentRead: aws.Bool(true),
	}
	resp, err := p.model.db.GetItemWithContext(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "get user %s", id)
	}
	if len(resp.Item) == 0 {
		return nil, model.ErrNotFound
	}
	return p.newUser(resp.Item)
}

// queryOne returns the single user matching an index key.
func (p *DynamoUserPeer) queryOne(ctx context.Context, params *dynamodb.QueryInput) (*model.User, error) {
	resp, err := p.model.db.QueryWithContext(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", aws.StringValue(params.IndexName))
	}
	if len(resp.Items) == 0 {
		return nil, model.ErrNotFound
	}
	if len(resp.Items) > 1 {
		ulog.Warnf("Index %s returned %d users, using the first", aws.StringValue(params.IndexName), len(resp.Items))
	}
	return p.newUser(resp.Items[0])
}

func (p *DynamoUserPeer) indexQuery(index, attr, value string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(p.model.table(TableUser)),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(attr + " = :v"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":v": {
				S: aws.String(value),
			},
		},
	}
}

func (p *DynamoUserPeer) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return p.queryOne(ctx, p.indexQuery(IndexEmail, "email_key", model.NormalizeKey(email)))
}

func (p *DynamoUserPeer) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return p.queryOne(ctx, p.indexQuery(IndexUsername, "username_key", model.NormalizeKey(username)))
}

func (p *DynamoUserPeer) GetByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	if token == "" {
		return nil, model.ErrNotFound
	}
	params := p.indexQuery(IndexResetToken, "reset_token", token)
	params.FilterExpression = aws.String("reset_expires > :now")
	params.ExpressionAttributeValues[":now"] = &dynamodb.AttributeValue{
		N: aws.String(strconv.FormatInt(now.UnixNano()/int64(time.Millisecond), 10)),
	}
	return p.queryOne(ctx, params)
}

func (p *DynamoUserPeer) GetByOAuthID(ctx context.Context, provider, id string) (*model.User, error) {
	params := &dynamodb.ScanInput{
		TableName:        aws.String(p.model.table(TableUser)),
		FilterExpression: aws.String("contains(oauth_keys, :k)"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":k": {
				S: aws.String(oauthKey(provider, id)),
			},
		},
	}
	var found map[string]*dynamodb.AttributeValue
	err := p.model.db.ScanPagesWithContext(ctx, params, func(page *dynamodb.ScanOutput, last bool) bool {
		if len(page.Items) > 0 {
			found = page.Items[0]
			return false
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan oauth id %s", oauthKey(provider, id))
	}
	if found == nil {
		return nil, model.ErrNotFound
	}
	return p.newUser(found)
}

func (p *DynamoUserPeer) count(ctx context.Context, params *dynamodb.QueryInput) (int, error) {
	params.Select = aws.String(dynamodb.SelectCount)
	resp, err := p.model.db.QueryWithContext(ctx, params)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", aws.StringValue(params.IndexName))
	}
	return int(aws.Int64Value(resp.Count)), nil
}

func (p *DynamoUserPeer) CountByUsername(ctx context.Context, username string) (int, error) {
	return p.count(ctx, p.indexQuery(IndexUsername, "username_key", model.NormalizeKey(username)))
}

func (p *DynamoUserPeer) CountByEmail(ctx context.Context, email string) (int, error) {
	return p.count(ctx, p.indexQuery(IndexEmail, "email_key", model.NormalizeKey(email)))
}

func (p *DynamoUserPeer) NewUser() *model.User {
	now := time.Now()
	return &model.User{
		Peer:      p,
		ID:        uuid.NewV4().String(),
		CreatedAt: now,
		LastLogin: now,
	}
}

func (p *DynamoUserPeer) put(ctx context.Context, u *model.User, condition string) error {
	if u == nil {
		return errors.New("User is nil")
	}
	items := make(map[string]*dynamodb.AttributeValue)
	if err := marshalUser(u, items); err != nil {
		return err
	}
	params := &dynamodb.PutItemInput{
		Item:                items,
		TableName:           aws.String(p.model.table(TableUser)),
		ConditionExpression: aws.String(condition),
	}
	_, err := p.model.db.PutItemWithContext(ctx, params)
	if err != nil {
		return errors.Wrapf(err, "put user %s", u.ID)
	}
	return nil
}

// SaveNew refuses to overwrite an existing id.
func (p *DynamoUserPeer) SaveNew(ctx context.Context, u *model.User) error {
	return p.put(ctx, u, "attribute_not_exists(id)")
}

func (p *DynamoUserPeer) Save(ctx context.Context, u *model.User) error {
	return p.put(ctx, u, "attribute_exists(id)")
}

func (p *DynamoUserPeer) UpdateLastLogin(ctx context.Context, id string) error {
	params := &dynamodb.UpdateItemInput{
		TableName: aws.String(p.model.table(TableUser)),
		Key: map[string]*dynamodb.AttributeValue{
			"id": {
				S: aws.String(id),
			},
		},
		UpdateExpression: aws.String("SET lastlogin = :lastlogin"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":lastlogin": {
				N: aws.String(strconv.FormatInt(time.Now().Unix(), 10)),
			},
		},
		ReturnValues: aws.String("ALL_NEW"),
	}

	_, err := p.model.db.UpdateItemWithContext(ctx, params)
	if err != nil {
		return errors.Wrapf(err, "update last login %s", id)
	}
	return nil
}

func (p *DynamoUserPeer) Remove(ctx context.Context, id string) error {
	params := &dynamodb.DeleteItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"id": {
				S: aws.String(id),
			},
		},
		TableName: aws.String(p.model.table(TableUser)),
	}
	_, err := p.model.db.DeleteItemWithContext(ctx, params)
	if err != nil {
		return errors.Wrapf(err, "delete user %s", id)
	}
	return nil
}
