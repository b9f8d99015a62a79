package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("user").Valid())
	assert.False(t, Role("ROOT").Valid())
}

func TestUser_ToPublic_OmitsPasswordHash(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{
		ID:           "6f1c",
		Email:        "ann@x.io",
		Name:         "Ann",
		PasswordHash: "$2a$10$secret",
		Role:         RoleUser,
		CreatedAt:    created,
	}

	pub := u.ToPublic()
	b, err := json.Marshal(pub)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, "6f1c", got["id"])
	assert.Equal(t, "ann@x.io", got["email"])
	assert.Equal(t, "Ann", got["name"])
	assert.Equal(t, "USER", got["role"])
	assert.Equal(t, "2024-01-02T03:04:05Z", got["createdAt"])
	assert.Len(t, got, 5)
	assert.NotContains(t, string(b), "secret")
}
