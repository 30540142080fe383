package utils

import (
	"fairway/src/models"
	"fairway/src/types"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(10000), ToMinorUnits(100))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(1), ToMinorUnits(0.01))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}

func TestPlatformFeeAmount(t *testing.T) {
	assert.Equal(t, int64(1200), PlatformFeeAmount(10000))
	assert.Equal(t, int64(599), PlatformFeeAmount(4999))
	assert.Equal(t, int64(0), PlatformFeeAmount(0))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$49.90", FormatPrice(49.9))
	assert.Equal(t, "$120.00", FormatPrice(120))
}

func TestFormatSchedule(t *testing.T) {
	assert.Equal(t, "an upcoming date", FormatSchedule(nil))
	when := time.Date(2026, time.September, 14, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "Monday, Sep 14 2026 at 3:30 PM", FormatSchedule(&when))
}

func TestGenerateToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "secret")
	user := &models.User{
		ID:   7,
		Role: "caddie",
		UID:  "test-uid",
	}
	token, err := GenerateToken(user)
	assert.Nil(t, err)
	assert.NotEmpty(t, token)

	claims := &types.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	assert.Nil(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "caddie", claims.Role)
	assert.Equal(t, "test-uid", claims.UID)
}
