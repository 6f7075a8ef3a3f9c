package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cr3t")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cr3t", hash)

	u := User{Username: "admin", Password: hash}
	assert.True(t, u.VerifyPassword("s3cr3t"))
	assert.False(t, u.VerifyPassword("wrong"))
}

func TestVerifyPasswordBadHash(t *testing.T) {
	u := User{Username: "admin", Password: "not-a-hash"}
	assert.False(t, u.VerifyPassword("anything"))
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{Username: "jdoe", FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{User{Username: "jdoe", FirstName: "Jane"}, "Jane"},
		{User{Username: "jdoe"}, "jdoe"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.user.DisplayName())
	}
}
