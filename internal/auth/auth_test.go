package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unipool/unipool-backend/internal/models"
)

func TestNewService(t *testing.T) {
	service, err := NewService()
	assert.NoError(t, err)
	assert.NotNil(t, service)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
}

func TestService_HashPIN(t *testing.T) {
	service, _ := NewService()

	pin := "4321"
	hash, err := service.HashPIN(pin)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, pin, hash)
}

func TestService_CheckPIN(t *testing.T) {
	service, _ := NewService()

	pin := "4321"
	hash, _ := service.HashPIN(pin)

	// Test correct PIN
	assert.True(t, service.CheckPIN(pin, hash))

	// Test incorrect PIN
	assert.False(t, service.CheckPIN("1234", hash))
}

func TestService_GenerateToken(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:          "+15551234567",
		Name:        "Test User",
		PhoneNumber: "+15551234567",
		Role:        models.RoleDriver,
	}

	token, err := service.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_ValidateToken(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:          "+15551234567",
		Name:        "Test User",
		PhoneNumber: "+15551234567",
		Role:        models.RolePassenger,
	}

	token, _ := service.GenerateToken(user)

	// Test valid token
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Name, claims.Name)
	assert.Equal(t, user.PhoneNumber, claims.PhoneNumber)
	assert.Equal(t, user.Role, claims.Role)

	// Test invalid token
	_, err = service.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service, _ := NewService()

	// Test valid header
	token := "valid-token"
	header := "Bearer " + token
	extracted, err := service.ExtractTokenFromHeader(header)
	assert.NoError(t, err)
	assert.Equal(t, token, extracted)

	// Test empty header
	_, err = service.ExtractTokenFromHeader("")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test invalid format
	_, err = service.ExtractTokenFromHeader("InvalidFormat")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test missing token
	_, err = service.ExtractTokenFromHeader("Bearer ")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidatePIN(t *testing.T) {
	service, _ := NewService()

	// Test valid PINs
	assert.NoError(t, service.ValidatePIN("1234"))
	assert.NoError(t, service.ValidatePIN("123456"))

	// Test too short
	err := service.ValidatePIN("123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "4 to 6 digits")

	// Test too long
	err = service.ValidatePIN("1234567")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "4 to 6 digits")

	// Test non-digit characters
	err = service.ValidatePIN("12a4")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "only digits")
}

func TestService_ValidatePhoneNumber(t *testing.T) {
	service, _ := NewService()

	// Test valid phone numbers
	assert.NoError(t, service.ValidatePhoneNumber("+15551234567"))
	assert.NoError(t, service.ValidatePhoneNumber("5551234567"))

	// Test too short
	err := service.ValidatePhoneNumber("12345")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "10 to 15 digits")

	// Test non-digit characters
	err = service.ValidatePhoneNumber("+1555123456a")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "only digits")
}

func TestService_ValidateName(t *testing.T) {
	service, _ := NewService()

	// Test valid name
	assert.NoError(t, service.ValidateName("Asha"))

	// Test too short name
	err := service.ValidateName("A")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 characters")

	// Test too long name
	longName := ""
	for i := 0; i < 51; i++ {
		longName += "a"
	}
	err = service.ValidateName(longName)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "less than 50 characters")
}

func TestService_TokenExpiration(t *testing.T) {
	service, _ := NewService()

	user := &models.User{
		ID:          "+15551234567",
		Name:        "Test User",
		PhoneNumber: "+15551234567",
		Role:        models.RoleDriver,
	}

	token, _ := service.GenerateToken(user)

	// Token should be valid immediately
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)

	// Check expiration time
	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(service.tokenExp.Seconds())+1)
}
