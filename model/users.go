package model

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PlaceholderPicture is shown for users who never set a picture.
const PlaceholderPicture = "https://s3.amazonaws.com/freecodecamp/camper-image-placeholder.png"

// Challenge types referenced by the public profile.
const (
	ChallengeTypeZipline  = 3
	ChallengeTypeBasejump = 4
	ChallengeTypeBonfire  = 5
)

// UserPeer defines interactions with the user data.
type UserPeer interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByResetToken(ctx context.Context, token string, now time.Time) (*User, error)
	GetByOAuthID(ctx context.Context, provider, id string) (*User, error)
	CountByUsername(ctx context.Context, username string) (int, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	UpdateLastLogin(ctx context.Context, id string) error
	NewUser() *User
	SaveNew(ctx context.Context, user *User) error
	Save(ctx context.Context, user *User) error
	Remove(ctx context.Context, id string) error
}

// Profile holds the publicly visible part of a user.
type Profile struct {
	Username        string
	Name            string
	Location        string
	GithubProfile   string
	FacebookProfile string
	LinkedinProfile string
	CodepenProfile  string
	TwitterHandle   string
	Bio             string
	Picture         string
}

// Website is one portfolio entry.
type Website struct {
	Title string
	Link  string
	Image string
}

// Portfolio holds up to three showcased websites.
type Portfolio struct {
	Websites [3]Website
}

// CompletedChallenge records a solved challenge.
type CompletedChallenge struct {
	ID            string
	Name          string
	ChallengeType int
	CompletedDate int64
}

// Token is an access token issued by an OAuth provider.
type Token struct {
	Kind        string
	AccessToken string
}

// User represents an user in the model.
type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	Profile              Profile
	Portfolio            Portfolio
	ProgressTimestamps   []int64
	CompletedChallenges  []CompletedChallenge
	LongestStreak        int
	CurrentStreak        int
	ResetPasswordToken   string
	ResetPasswordExpires time.Time
	OAuthIDs             map[string]string
	Tokens               []Token
	Peer                 UserPeer
	CreatedAt            time.Time
	LastLogin            time.Time
}

// SaveNew saves a new user to the model.
func (u *User) SaveNew(ctx context.Context) error {
	return u.Peer.SaveNew(ctx, u)
}

// Save stores all fields of an existing user.
func (u *User) Save(ctx context.Context) error {
	return u.Peer.Save(ctx, u)
}

// SetPassword replaces the stored hash with a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// ComparePassword reports whether password matches the stored hash.
func (u *User) ComparePassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UnlinkProvider forgets the account of an OAuth provider and every token it issued.
func (u *User) UnlinkProvider(provider string) {
	delete(u.OAuthIDs, provider)
	tokens := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t.Kind != provider {
			tokens = append(tokens, t)
		}
	}
	u.Tokens = tokens
}

// LinkProvider associates the account with an id at an OAuth provider.
func (u *User) LinkProvider(provider, id string) {
	if u.OAuthIDs == nil {
		u.OAuthIDs = make(map[string]string)
	}
	u.OAuthIDs[provider] = id
}

// ChallengesOfType returns the completed challenges matching any of types.
func (u *User) ChallengesOfType(types ...int) []CompletedChallenge {
	var res []CompletedChallenge
	for _, c := range u.CompletedChallenges {
		for _, t := range types {
			if c.ChallengeType == t {
				res = append(res, c)
				break
			}
		}
	}
	return res
}

// ClearResetToken invalidates a pending password reset.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = time.Time{}
}

// Author returns the denormalized author fields stored on stories and comments.
func (u *User) Author() Author {
	return Author{
		UserID:   u.ID,
		Username: u.Profile.Username,
		Picture:  u.Profile.Picture,
	}
}

// NormalizeKey is the form usernames and emails are looked up by.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
