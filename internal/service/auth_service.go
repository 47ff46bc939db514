package service

import (
	"errors"
	"fmt"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/pkg/jwt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	Authenticate(tokenString string) (*model.User, error)
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Me(userID uuid.UUID) (*TokenValidationResponse, error)
	Logout(userID uuid.UUID) error
	ChangePassword(email, oldPassword, newPassword string) error
	SetPassword(email, newPassword string) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	signer   *jwt.Signer
	logger   zerolog.Logger
}

func NewAuthService(userRepo repository.UserRepository, signer *jwt.Signer, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		signer:   signer,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// single session: a new version invalidates every older token
	version := uuid.New().String()
	if err := s.userRepo.RecordLogin(user.ID, version); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.TokenVersion = version

	token, err := s.signer.Generate(jwt.Claims{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		OrgID:        user.OrgID(),
		OrgName:      user.OrgName(),
		OrgRole:      user.RoleCode(),
		Privileges:   user.GetPrivilegeCodes(),
		TokenVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("org_role", user.RoleCode()).Msg("user logged in")

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Authenticate resolves a bearer token to its still-valid user.
func (s *authService) Authenticate(tokenString string) (*model.User, error) {
	claims, err := s.signer.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	return user, nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	user, err := s.Authenticate(tokenString)
	if err != nil {
		return nil, err
	}
	return sessionOf(user), nil
}

func (s *authService) Me(userID uuid.UUID) (*TokenValidationResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return sessionOf(user), nil
}

func (s *authService) Logout(userID uuid.UUID) error {
	if err := s.userRepo.UpdateTokenVersion(userID, uuid.New().String()); err != nil {
		return fmt.Errorf("rotate token version: %w", err)
	}
	s.logger.Info().Str("user_id", userID.String()).Msg("user logged out")
	return nil
}

func (s *authService) ChangePassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	return s.storePassword(user, newPassword)
}

// SetPassword is the administrative reset used by registryctl.
func (s *authService) SetPassword(email, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}
	return s.storePassword(user, newPassword)
}

func (s *authService) storePassword(user *model.User, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if err := user.SetPassword(password); err != nil {
		return errors.New("failed to hash new password")
	}
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}
	// a new password ends the current session
	return s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String())
}

func sessionOf(user *model.User) *TokenValidationResponse {
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}
}
