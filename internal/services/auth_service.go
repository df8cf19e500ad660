package services

import (
	"errors"
	"strings"

	"medreminder/internal/models"
	"medreminder/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const invalidCredentials = "Invalid email or password"

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	FullName        string `json:"fullName" label:"Full name" validate:"required"`
	Email           string `json:"email" label:"Email" validate:"emailtld"`
	Password        string `json:"password" label:"Password" validate:"strongpassword"`
	ConfirmPassword string `json:"confirmPassword" label:"Confirm password" validate:"eqfield=Password"`
}

// AuthService handles registration and credential checks. Issuing sessions is
// left to the caller.
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   PasswordHasher
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		validate: newValidator(),
		log:      log,
	}
}

// Register validates the input, hashes the password and stores a new user.
func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(validationMessage(err))
	}

	exists, err := s.userRepo.EmailExists(in.Email)
	if err != nil {
		return nil, internalError("Registration failed", err)
	}
	if exists {
		return nil, validationError("Email already registered")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internalError("Registration failed", err)
	}

	user := &models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hashed,
	}
	if err := s.userRepo.Create(user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, validationError("Email already registered")
		}
		return nil, internalError("Registration failed", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID}).Info("User registered")
	return user, nil
}

// Login returns the user matching the credentials. Unknown emails and wrong
// passwords fail with the same message.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, authError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, authError(invalidCredentials)
		}
		return nil, internalError("Login failed", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.WithFields(logrus.Fields{"user_id": user.ID}).Warn("Rejected login with wrong password")
		return nil, authError(invalidCredentials)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
