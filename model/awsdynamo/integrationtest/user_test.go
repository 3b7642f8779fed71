package integrationtest

import (
	"context"
	"testing"
	"time"

	"camper/model"
	"camper/model/awsdynamo"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func loadUserFixtures(ctx context.Context, dm *awsdynamo.DynamoModel) error {
	u := &model.User{
		ID:    "uid123",
		Email: "test@example.com",
		Profile: model.Profile{
			Username: "username",
		},
		OAuthIDs:             map[string]string{"google": "1234"},
		ResetPasswordToken:   "resettoken",
		ResetPasswordExpires: time.Now().Add(time.Hour),
		CreatedAt:            time.Unix(123456789, 0),
		LastLogin:            time.Unix(123456789, 0),
	}
	return dm.UserPeer().SaveNew(ctx, u)
}

func TestUserGetByID(t *testing.T) {
	assert := assert.New(t)
	setup()
	peer := mmodel.UserPeer()
	u, err := peer.GetByID(context.Background(), "uid123")
	if err != nil {
		t.Fatalf("Error getting ByID: %s\n", err)
	}
	assert.Equal("uid123", u.ID)
	assert.Equal("test@example.com", u.Email)
	assert.Equal("username", u.Profile.Username)
}

func TestUserCreateNew(t *testing.T) {
	assert := assert.New(t)
	setup()
	ctx := context.Background()
	peer := mmodel.UserPeer()
	u := peer.NewUser()
	u.Profile.Username = gofakeit.Username()
	u.Email = gofakeit.Email()
	err := u.SaveNew(ctx)
	if err != nil {
		t.Fatalf("Error saving new user: %s\n", err)
	}
	assert.Error(u.SaveNew(ctx), "saving the same id twice must fail")

	gu, err := peer.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("Could not get new created user: %s\n", err)
	}
	assert.Equal(u.ID, gu.ID)
	assert.Equal(u.Profile.Username, gu.Profile.Username)
	assert.Equal(u.Email, gu.Email)
	assert.Equal(u.CreatedAt.Unix(), gu.CreatedAt.Unix())
}

func TestUserLookups(t *testing.T) {
	assert := assert.New(t)
	setup()
	ctx := context.Background()
	peer := mmodel.UserPeer()

	u, err := peer.GetByEmail(ctx, "TEST@example.com")
	if assert.NoError(err) {
		assert.Equal("uid123", u.ID)
	}
	u, err = peer.GetByUsername(ctx, "UserName")
	if assert.NoError(err) {
		assert.Equal("uid123", u.ID)
	}
	u, err = peer.GetByOAuthID(ctx, "google", "1234")
	if assert.NoError(err) {
		assert.Equal("uid123", u.ID)
	}
	n, err := peer.CountByUsername(ctx, "username")
	assert.NoError(err)
	assert.Equal(1, n)

	_, err = peer.GetByEmail(ctx, "nobody@example.com")
	assert.Equal(model.ErrNotFound, err)
}

func TestUserResetToken(t *testing.T) {
	assert := assert.New(t)
	setup()
	ctx := context.Background()
	peer := mmodel.UserPeer()

	u, err := peer.GetByResetToken(ctx, "resettoken", time.Now())
	if assert.NoError(err) {
		assert.Equal("uid123", u.ID)
	}
	_, err = peer.GetByResetToken(ctx, "resettoken", time.Now().Add(2*time.Hour))
	assert.Equal(model.ErrNotFound, err, "expired token must not match")
}

func TestUserUpdateLastLogin(t *testing.T) {
	assert := assert.New(t)
	setup()
	ctx := context.Background()
	peer := mmodel.UserPeer()
	err := peer.UpdateLastLogin(ctx, "uid123")
	if err != nil {
		t.Fatalf("Could not update last login: %s\n", err)
	}

	u, err := peer.GetByID(ctx, "uid123")
	if err != nil {
		t.Fatalf("Could not get user: %s\n", err)
	}
	assert.True(u.LastLogin.Unix() <= time.Now().Unix())
	assert.True(u.LastLogin.Unix() >= time.Now().Add(-time.Hour).Unix())
}

func TestUserRemove(t *testing.T) {
	setup()
	ctx := context.Background()
	peer := mmodel.UserPeer()
	u := peer.NewUser()
	u.Email = gofakeit.Email()
	if err := u.SaveNew(ctx); err != nil {
		t.Fatalf("Error saving new user: %s\n", err)
	}
	if err := peer.Remove(ctx, u.ID); err != nil {
		t.Fatalf("Error removing user: %s\n", err)
	}
	_, err := peer.GetByID(ctx, u.ID)
	assert.Equal(t, model.ErrNotFound, err)
}
