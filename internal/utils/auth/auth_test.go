package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/guirluz/rental-backend/internal/utils/errs"
	"github.com/stretchr/testify/assert"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")

	assert.NoError(t, err)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, CheckPassword("secret", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("test-secret", "ana@x.com", time.Hour)
	assert.NoError(t, err)

	email, err := ParseToken("test-secret", token)
	assert.NoError(t, err)
	assert.Equal(t, "ana@x.com", email)
}

func TestParseToken_Rejections(t *testing.T) {
	t.Run("WrongSecret", func(t *testing.T) {
		token, err := CreateToken("test-secret", "ana@x.com", time.Hour)
		assert.NoError(t, err)

		_, err = ParseToken("other-secret", token)
		assert.True(t, errors.Is(err, errs.ErrInvalidToken))
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := CreateToken("test-secret", "ana@x.com", -time.Minute)
		assert.NoError(t, err)

		_, err = ParseToken("test-secret", token)
		assert.True(t, errors.Is(err, errs.ErrInvalidToken))
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseToken("test-secret", "not.a.token")
		assert.True(t, errors.Is(err, errs.ErrInvalidToken))
	})

	t.Run("EmptySubject", func(t *testing.T) {
		token, err := CreateToken("test-secret", "", time.Hour)
		assert.NoError(t, err)

		_, err = ParseToken("test-secret", token)
		assert.True(t, errors.Is(err, errs.ErrInvalidToken))
	})
}
