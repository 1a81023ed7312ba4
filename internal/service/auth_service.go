// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/pkg/hash"
	"notes-versioning-be/internal/pkg/logger"
	"notes-versioning-be/internal/pkg/token"
	"notes-versioning-be/internal/repository/contract"
	"notes-versioning-be/internal/repository/memory"
	"notes-versioning-be/internal/repository/specification"
	"notes-versioning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Authenticate(ctx context.Context, bearer string) (*entity.User, *token.Claims, error)
	Logout(ctx context.Context, claims *token.Claims) error
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error)
}

// TokenDenylist remembers revoked token ids until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenId string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	tokens     *token.Manager
	accounts   *memory.AccountCache
	denylist   TokenDenylist
	log        logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	tokens *token.Manager,
	accounts *memory.AccountCache,
	denylist TokenDenylist,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		tokens:     tokens,
		accounts:   accounts,
		denylist:   denylist,
		log:        log,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	email := normalizeEmail(req.Email)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	passwordHash, err := hash.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, contract.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}

	s.log.Info("AuthService", "account registered", map[string]interface{}{"user_id": user.Id})

	return &dto.RegisterResponse{
		Id:        user.Id,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := hash.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	signed, _, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.accounts.Save(user)

	return &dto.LoginResponse{
		AccessToken: signed,
		TokenType:   token.TypeBearer,
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, bearer string) (*entity.User, *token.Claims, error) {
	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			// fail closed: an unknown revocation state is not a valid session
			s.log.Warn("AuthService", "revocation lookup failed", map[string]interface{}{"error": err.Error()})
			return nil, nil, ErrUnauthenticated
		}
		if revoked {
			return nil, nil, ErrUnauthenticated
		}
	}

	if user, ok := s.accounts.Get(claims.Subject); ok {
		return user, claims, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: claims.Subject})
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUnauthenticated
	}
	s.accounts.Save(user)

	return user, claims, nil
}

func (s *authService) Logout(ctx context.Context, claims *token.Claims) error {
	if claims == nil || s.denylist == nil {
		return nil
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.denylist.Revoke(ctx, claims.ID, expiresAt)
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return &dto.UserDTO{Id: user.Id, Email: user.Email, CreatedAt: user.CreatedAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
