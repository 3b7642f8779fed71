package mongodb

import (
	"testing"
	"time"

	"camper/model"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserDocRoundTrip(t *testing.T) {
	assert := assert.New(t)
	want := &model.User{
		ID:    primitive.NewObjectID().Hex(),
		Email: "Camper@Example.com",
		Profile: model.Profile{
			Username: "CamperOne",
			Picture:  model.PlaceholderPicture,
		},
		ProgressTimestamps:   []int64{1425200000000},
		ResetPasswordToken:   "tok",
		ResetPasswordExpires: time.Unix(1448272067, 0).UTC(),
		OAuthIDs:             map[string]string{"google": "1234"},
		Tokens:               []model.Token{{Kind: "google", AccessToken: "at"}},
		CreatedAt:            time.Unix(1448270000, 0).UTC(),
		LastLogin:            time.Unix(1448272067, 0).UTC(),
	}
	want.Portfolio.Websites[1] = model.Website{Title: "Site", Link: "http://example.com"}

	d, err := toUserDoc(want)
	if err != nil {
		t.Fatalf("Error converting user: %s", err)
	}
	assert.Equal("camper@example.com", d.EmailKey)
	assert.Equal("camperone", d.UsernameKey)

	raw, err := bson.Marshal(d)
	if err != nil {
		t.Fatalf("Error marshalling user: %s", err)
	}
	var back userDoc
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Error unmarshalling user: %s", err)
	}
	var u model.User
	fromUserDoc(&back, &u)
	assert.Equal(want.ID, u.ID)
	assert.Equal(want.Profile, u.Profile)
	assert.Equal(want.Portfolio, u.Portfolio)
	assert.Equal(want.OAuthIDs, u.OAuthIDs)
	assert.Equal(want.Tokens, u.Tokens)
	assert.True(want.ResetPasswordExpires.Equal(u.ResetPasswordExpires))
	assert.True(want.CreatedAt.Equal(u.CreatedAt))
}

func TestUserDocOmitsClearedResetToken(t *testing.T) {
	assert := assert.New(t)
	u := &model.User{ID: primitive.NewObjectID().Hex()}
	d, err := toUserDoc(u)
	if err != nil {
		t.Fatalf("Error converting user: %s", err)
	}
	raw, err := bson.Marshal(d)
	if err != nil {
		t.Fatalf("Error marshalling user: %s", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("Error unmarshalling user: %s", err)
	}
	_, hasToken := m["reset_token"]
	_, hasEmailKey := m["email_key"]
	assert.False(hasToken)
	assert.False(hasEmailKey, "empty keys stay out of the sparse unique index")
}

func TestToUserDocRejectsBadID(t *testing.T) {
	_, err := toUserDoc(&model.User{ID: "not-an-object-id"})
	assert.Error(t, err)
}

func TestObjectIDMalformed(t *testing.T) {
	_, err := objectID("xyz")
	assert.Equal(t, model.ErrNotFound, err)
}
