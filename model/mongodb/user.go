package mongodb

import (
	"context"
	"time"

	"camper/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserPeer struct {
	coll *mongo.Collection
}

type profileDoc struct {
	Username        string `bson:"username"`
	Name            string `bson:"name"`
	Location        string `bson:"location"`
	GithubProfile   string `bson:"github_profile"`
	FacebookProfile string `bson:"facebook_profile"`
	LinkedinProfile string `bson:"linkedin_profile"`
	CodepenProfile  string `bson:"codepen_profile"`
	TwitterHandle   string `bson:"twitter_handle"`
	Bio             string `bson:"bio"`
	Picture         string `bson:"picture"`
}

type websiteDoc struct {
	Title string `bson:"title"`
	Link  string `bson:"link"`
	Image string `bson:"image"`
}

type challengeDoc struct {
	ID            string `bson:"_id"`
	Name          string `bson:"name"`
	ChallengeType int    `bson:"challenge_type"`
	CompletedDate int64  `bson:"completed_date"`
}

type tokenDoc struct {
	Kind        string `bson:"kind"`
	AccessToken string `bson:"access_token"`
}

type userDoc struct {
	ID                  primitive.ObjectID `bson:"_id"`
	Email               string             `bson:"email"`
	EmailKey            string             `bson:"email_key,omitempty"`
	UsernameKey         string             `bson:"username_key,omitempty"`
	Password            string             `bson:"password"`
	Profile             profileDoc         `bson:"profile"`
	Portfolio           []websiteDoc       `bson:"portfolio"`
	ProgressTimestamps  []int64            `bson:"progress_timestamps"`
	CompletedChallenges []challengeDoc     `bson:"completed_challenges"`
	LongestStreak       int                `bson:"longest_streak"`
	CurrentStreak       int                `bson:"current_streak"`
	ResetToken          string             `bson:"reset_token,omitempty"`
	ResetExpires        time.Time          `bson:"reset_expires,omitempty"`
	OAuthIDs            map[string]string  `bson:"oauth_ids,omitempty"`
	Tokens              []tokenDoc         `bson:"tokens"`
	CreatedAt           time.Time          `bson:"created_at"`
	LastLogin           time.Time          `bson:"lastlogin"`
}

func toUserDoc(u *model.User) (*userDoc, error) {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "user id %q", u.ID)
	}
	d := &userDoc{
		ID:                 oid,
		Email:              u.Email,
		EmailKey:           model.NormalizeKey(u.Email),
		UsernameKey:        model.NormalizeKey(u.Profile.Username),
		Password:           u.PasswordHash,
		Profile:            profileDoc(u.Profile),
		ProgressTimestamps: u.ProgressTimestamps,
		LongestStreak:      u.LongestStreak,
		CurrentStreak:      u.CurrentStreak,
		ResetToken:         u.ResetPasswordToken,
		OAuthIDs:           u.OAuthIDs,
		CreatedAt:          u.CreatedAt,
		LastLogin:          u.LastLogin,
	}
	if d.ResetToken != "" {
		d.ResetExpires = u.ResetPasswordExpires
	}
	for _, w := range u.Portfolio.Websites {
		d.Portfolio = append(d.Portfolio, websiteDoc(w))
	}
	for _, c := range u.CompletedChallenges {
		d.CompletedChallenges = append(d.CompletedChallenges, challengeDoc(c))
	}
	for _, t := range u.Tokens {
		d.Tokens = append(d.Tokens, tokenDoc(t))
	}
	return d, nil
}

func fromUserDoc(d *userDoc, u *model.User) {
	u.ID = d.ID.Hex()
	u.Email = d.Email
	u.PasswordHash = d.Password
	u.Profile = model.Profile(d.Profile)
	u.ProgressTimestamps = d.ProgressTimestamps
	u.LongestStreak = d.LongestStreak
	u.CurrentStreak = d.CurrentStreak
	u.ResetPasswordToken = d.ResetToken
	u.ResetPasswordExpires = d.ResetExpires
	u.OAuthIDs = d.OAuthIDs
	u.CreatedAt = d.CreatedAt
	u.LastLogin = d.LastLogin
	u.Portfolio = model.Portfolio{}
	for i, w := range d.Portfolio {
		if i < len(u.Portfolio.Websites) {
			u.Portfolio.Websites[i] = model.Website(w)
		}
	}
	u.CompletedChallenges = nil
	for _, c := range d.CompletedChallenges {
		u.CompletedChallenges = append(u.CompletedChallenges, model.CompletedChallenge(c))
	}
	u.Tokens = nil
	for _, t := range d.Tokens {
		u.Tokens = append(u.Tokens, model.Token(t))
	}
}

func (p *MongoUserPeer) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var d userDoc
	if err := p.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, findError(err, "find user")
	}
	u := &model.User{Peer: p}
	fromUserDoc(&d, u)
	return u, nil
}

func (p *MongoUserPeer) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return p.findOne(ctx, bson.M{"_id": oid})
}

func (p *MongoUserPeer) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return p.findOne(ctx, bson.M{"email_key": model.NormalizeKey(email)})
}

func (p *MongoUserPeer) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return p.findOne(ctx, bson.M{"username_key": model.NormalizeKey(username)})
}

func (p *MongoUserPeer) GetByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	if token == "" {
		return nil, model.ErrNotFound
	}
	return p.findOne(ctx, bson.M{
		"reset_token":   token,
		"reset_expires": bson.M{"$gt": now},
	})
}

func (p *MongoUserPeer) GetByOAuthID(ctx context.Context, provider, id string) (*model.User, error) {
	return p.findOne(ctx, bson.M{"oauth_ids." + provider: id})
}

func (p *MongoUserPeer) CountByUsername(ctx context.Context, username string) (int, error) {
	n, err := p.coll.CountDocuments(ctx, bson.M{"username_key": model.NormalizeKey(username)})
	if err != nil {
		return 0, errors.Wrap(err, "count usernames")
	}
	return int(n), nil
}

func (p *MongoUserPeer) CountByEmail(ctx context.Context, email string) (int, error) {
	n, err := p.coll.CountDocuments(ctx, bson.M{"email_key": model.NormalizeKey(email)})
	if err != nil {
		return 0, errors.Wrap(err, "count emails")
	}
	return int(n), nil
}

func (p *MongoUserPeer) UpdateLastLogin(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := p.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"lastlogin": time.Now()}})
	if err != nil {
		return errors.Wrapf(err, "update last login %s", id)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (p *MongoUserPeer) NewUser() *model.User {
	now := time.Now()
	return &model.User{
		Peer:      p,
		ID:        primitive.NewObjectID().Hex(),
		CreatedAt: now,
		LastLogin: now,
	}
}

func (p *MongoUserPeer) SaveNew(ctx context.Context, u *model.User) error {
	if u == nil {
		return errors.New("User is nil")
	}
	d, err := toUserDoc(u)
	if err != nil {
		return err
	}
	if _, err := p.coll.InsertOne(ctx, d); err != nil {
		return errors.Wrapf(err, "insert user %s", u.ID)
	}
	return nil
}

func (p *MongoUserPeer) Save(ctx context.Context, u *model.User) error {
	if u == nil {
		return errors.New("User is nil")
	}
	d, err := toUserDoc(u)
	if err != nil {
		return err
	}
	res, err := p.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return errors.Wrapf(err, "replace user %s", u.ID)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (p *MongoUserPeer) Remove(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if _, err := p.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return errors.Wrapf(err, "delete user %s", id)
	}
	return nil
}
