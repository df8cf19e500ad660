package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"medreminder/internal/models"
	"medreminder/internal/repositories"
	"medreminder/internal/services"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(repo *MockUserRepository) *services.AuthService {
	log, _ := test.NewNullLogger()
	return services.NewAuthService(repo, services.NewBcryptHasher(bcrypt.MinCost), log)
}

func validRegistration() services.RegisterInput {
	return services.RegisterInput{
		FullName:        "Jane Doe",
		Email:           "Jane@Example.com",
		Password:        "LongEnough1!",
		ConfirmPassword: "LongEnough1!",
	}
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	mockRepo.On("EmailExists", "jane@example.com").Return(false, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = "user-1"
	}).Return(nil).Once()

	user, err := authService.Register(validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotEqual(t, "LongEnough1!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("LongEnough1!")))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *services.RegisterInput)
		message string
	}{
		{"blank full name", func(in *services.RegisterInput) { in.FullName = "   " }, "Full name is required"},
		{"email without tld", func(in *services.RegisterInput) { in.Email = "jane@example" }, "Invalid email format"},
		{"email without at", func(in *services.RegisterInput) { in.Email = "jane.example.com" }, "Invalid email format"},
		{"short password", func(in *services.RegisterInput) { in.Password, in.ConfirmPassword = "short1!", "short1!" }, "Password must be at least 8 characters"},
		{"no special", func(in *services.RegisterInput) { in.Password, in.ConfirmPassword = "LongEnough1", "LongEnough1" }, "Password must be at least 8 characters"},
		{"no upper", func(in *services.RegisterInput) { in.Password, in.ConfirmPassword = "longenough1!", "longenough1!" }, "Password must be at least 8 characters"},
		{"no lower", func(in *services.RegisterInput) { in.Password, in.ConfirmPassword = "LONGENOUGH1!", "LONGENOUGH1!" }, "Password must be at least 8 characters"},
		{"no digit", func(in *services.RegisterInput) { in.Password, in.ConfirmPassword = "LongEnough!!", "LongEnough!!" }, "Password must be at least 8 characters"},
		{"mismatched confirmation", func(in *services.RegisterInput) { in.ConfirmPassword = "LongEnough2!" }, "Passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			authService := newAuthService(mockRepo)

			in := validRegistration()
			tt.mutate(&in)
			user, err := authService.Register(in)
			assert.Nil(t, user)
			require.Error(t, err)
			assert.Equal(t, services.KindValidation, services.KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	// The lookup uses the normalized email, so a differently cased address collides.
	mockRepo.On("EmailExists", "jane@example.com").Return(true, nil).Once()

	in := validRegistration()
	in.Email = "  JANE@example.COM "
	_, err := authService.Register(in)
	require.Error(t, err)
	assert.Equal(t, services.KindValidation, services.KindOf(err))
	assert.Equal(t, "Email already registered", err.Error())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateOnInsert(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	mockRepo.On("EmailExists", "jane@example.com").Return(false, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("insert: %w", repositories.ErrDuplicate)).Once()

	_, err := authService.Register(validRegistration())
	require.Error(t, err)
	assert.Equal(t, services.KindValidation, services.KindOf(err))
	assert.Equal(t, "Email already registered", err.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	mockRepo.On("EmailExists", "jane@example.com").Return(false, errors.New("connection refused")).Once()

	_, err := authService.Register(validRegistration())
	require.Error(t, err)
	assert.Equal(t, services.KindInternal, services.KindOf(err))
	assert.ErrorContains(t, err, "connection refused")
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("LongEnough1!"), bcrypt.MinCost)
	stored := &models.User{
		ID:           "user-1",
		FullName:     "Jane Doe",
		Email:        "jane@example.com",
		PasswordHash: string(hashedPassword),
	}

	// Test successful login
	mockRepo.On("GetByEmail", "jane@example.com").Return(stored, nil).Once()
	user, err := authService.Login(" Jane@Example.com", "LongEnough1!")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	// Test wrong password
	mockRepo.On("GetByEmail", "jane@example.com").Return(stored, nil).Once()
	_, wrongPassword := authService.Login("jane@example.com", "WrongPass1!")
	require.Error(t, wrongPassword)
	assert.Equal(t, services.KindAuth, services.KindOf(wrongPassword))

	// Test unknown email
	mockRepo.On("GetByEmail", "nobody@example.com").
		Return(nil, fmt.Errorf("lookup: %w", repositories.ErrNotFound)).Once()
	_, unknownEmail := authService.Login("nobody@example.com", "LongEnough1!")
	require.Error(t, unknownEmail)
	assert.Equal(t, services.KindAuth, services.KindOf(unknownEmail))

	// Both failures must be indistinguishable to the caller.
	assert.Equal(t, "Invalid email or password", wrongPassword.Error())
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_MissingCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	_, err := authService.Login("", "LongEnough1!")
	assert.Equal(t, services.KindAuth, services.KindOf(err))

	_, err = authService.Login("jane@example.com", "")
	assert.Equal(t, services.KindAuth, services.KindOf(err))

	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything)
}

func TestAuthService_Register_LongPasswords(t *testing.T) {
	tests := map[string]string{
		"multibyte over 72 bytes":  "Aa1!" + strings.Repeat("é", 40),
		"ascii over 72 characters": "Aa1!" + strings.Repeat("x", 70),
	}
	for name, password := range tests {
		t.Run(name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			authService := newAuthService(mockRepo)

			var stored *models.User
			mockRepo.On("EmailExists", "jane@example.com").Return(false, nil).Once()
			mockRepo.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
				stored = args.Get(0).(*models.User)
			}).Return(nil).Once()

			in := validRegistration()
			in.Password, in.ConfirmPassword = password, password
			_, err := authService.Register(in)
			require.NoError(t, err)

			mockRepo.On("GetByEmail", "jane@example.com").Return(stored, nil).Once()
			user, err := authService.Login("jane@example.com", password)
			require.NoError(t, err)
			assert.Equal(t, stored.Email, user.Email)
			mockRepo.AssertExpectations(t)
		})
	}
}
