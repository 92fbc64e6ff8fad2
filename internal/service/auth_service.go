package service

import (
	"context"
	"errors"

	"github.com/LisaMariaKleiner/quizly/internal/dto"
	"github.com/LisaMariaKleiner/quizly/internal/model"
	"github.com/LisaMariaKleiner/quizly/internal/repository"
	"github.com/LisaMariaKleiner/quizly/pkg/token"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req dto.RegisterRequest) error
	Login(req dto.LoginRequest) (*dto.UserResponse, *token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Register(req dto.RegisterRequest) error {
	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return &ValidationError{Field: "username", Message: "username is already taken"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return &ValidationError{Field: "email", Message: "email already exists"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(&user); err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to create user")
		return err
	}

	log.Info().Uint("userID", user.ID).Str("username", user.Username).Msg("User registered")
	return nil
}

func (s *authService) Login(req dto.LoginRequest) (*dto.UserResponse, *token.Pair, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}

	var resp dto.UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		return nil, nil, err
	}
	return &resp, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccess(claims.UserID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.RevokeRefresh(ctx, refreshToken)
}
