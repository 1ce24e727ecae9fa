package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/config"
	"github.com/spec-kit/backoffice-service/internal/domain"
	"github.com/spec-kit/backoffice-service/internal/repository"
	apperrors "github.com/spec-kit/backoffice-service/pkg/util/errorutil"
)

// AuthService issues bearer tokens for staff accounts.
type AuthService struct {
	employees repository.EmployeeRepository
	tokenMgr  *auth.TokenManager
	logger    *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	Logger       *zap.Logger
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Employee  *domain.Employee
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		employees: deps.EmployeeRepo,
		tokenMgr:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:    logger,
	}
}

// Login authenticates an employee by email and password. Unknown emails,
// wrong passwords and inactive accounts are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !employee.IsActive() {
		s.logger.Info("login rejected for inactive employee", zap.String("employee_id", employee.ID))
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(employee.ID, employee.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Employee: employee, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
