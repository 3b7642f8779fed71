package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAuthor(t *testing.T) {
	assert := assert.New(t)
	u := &User{ID: "uid123", Profile: Profile{Username: "camper", Picture: "pic"}}
	assert.Equal(Author{UserID: "uid123", Username: "camper", Picture: "pic"}, u.Author())
}
