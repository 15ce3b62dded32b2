package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredential_Representation(t *testing.T) {
	t.Run("zero value yields nil", func(t *testing.T) {
		var c Credential
		assert.True(t, c.IsZero())
		assert.Nil(t, c.Representation())
	})

	t.Run("raw password", func(t *testing.T) {
		c := RawPassword("s3cret")
		assert.False(t, c.IsZero())

		rep := c.Representation()
		require.Len(t, rep, 1)
		assert.Equal(t, map[string]any{
			"type":      "password",
			"value":     "s3cret",
			"temporary": false,
		}, rep[0])
	})

	t.Run("bcrypt hash", func(t *testing.T) {
		c := BcryptPassword("$2a$12$abcdefghijklmnopqrstuv")
		assert.False(t, c.IsZero())

		rep := c.Representation()
		require.Len(t, rep, 1)
		assert.Equal(t, map[string]any{
			"hashedSaltedValue": "$2a$12$abcdefghijklmnopqrstuv",
			"algorithm":         "bcrypt",
			"hashIterations":    12,
			"type":              "password",
			"temporary":         false,
		}, rep[0])
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}
