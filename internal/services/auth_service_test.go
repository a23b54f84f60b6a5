package services_test

import (
	"fmt"
	"testing"

	"comerciotech/internal/models"
	"comerciotech/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

const testSecret = "test-secret"

func TestAuthService_RegisterUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewAuthService(userRepo, testSecret)

	user := &models.User{Username: "operator", Email: "op@example.com", Password: "s3cret"}
	userRepo.On("GetByUsername", "operator").Return(nil, fmt.Errorf("user not found")).Once()
	userRepo.On("GetByEmail", "op@example.com").Return(nil, fmt.Errorf("user not found")).Once()
	userRepo.On("Create", user).Return(nil).Once()

	err := service.RegisterUser(user)
	assert.NoError(t, err)

	// Stored password is a bcrypt hash of the original.
	assert.NotEqual(t, "s3cret", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret")))
	userRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUserDuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewAuthService(userRepo, testSecret)

	user := &models.User{Username: "operator", Email: "op@example.com", Password: "s3cret"}
	userRepo.On("GetByUsername", "operator").Return(&models.User{Username: "operator"}, nil).Once()

	err := service.RegisterUser(user)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already taken")
	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewAuthService(userRepo, testSecret)

	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	stored := &models.User{ID: "user-1", Username: "operator", Password: string(hashed)}
	userRepo.On("GetByUsername", "operator").Return(stored, nil)

	token, err := service.LoginUser("operator", "s3cret")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "operator", claims["username"])
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewAuthService(userRepo, testSecret)

	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	stored := &models.User{ID: "user-1", Username: "operator", Password: string(hashed)}
	userRepo.On("GetByUsername", "operator").Return(stored, nil).Once()

	_, err = service.LoginUser("operator", "wrong")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := services.NewAuthService(userRepo, testSecret)

	_, err := service.ValidateToken("not-a-token")
	assert.Error(t, err)
}
