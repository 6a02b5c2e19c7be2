package rbp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/go-chi/jwtauth/v5"
)

type RBPServiceImpl struct {
	source   rbp.PermissionSource
	policy   rbp.Policy
	failOpen bool
	logger   *slog.Logger
}

// NewRBPService builds the permission gate. source may be nil when no HR
// platform is configured; checks then go straight to the local policy.
func NewRBPService(source rbp.PermissionSource, policy rbp.Policy, failOpen bool, logger *slog.Logger) rbp.RBPService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RBPServiceImpl{
		source:   source,
		policy:   policy,
		failOpen: failOpen,
		logger:   logger,
	}
}

// PrincipalFromContext reads user_id, company_id and role claims from the JWT context.
func PrincipalFromContext(ctx context.Context) (rbp.Principal, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return rbp.Principal{}, fmt.Errorf("%w: %v", rbp.ErrMissingClaims, err)
	}

	companyID, _ := claims["company_id"].(string)
	userID, _ := claims["user_id"].(string)
	if companyID == "" || userID == "" {
		return rbp.Principal{}, rbp.ErrMissingClaims
	}
	role, _ := claims["role"].(string)

	return rbp.Principal{UserID: userID, CompanyID: companyID, Role: role}, nil
}

func (s *RBPServiceImpl) CheckPermission(ctx context.Context, userID string, companyID string, permission rbp.Permission) (rbp.CheckResult, error) {
	if s.source != nil {
		result, err := s.source.LookupPermission(ctx, userID, companyID, permission)
		if err == nil {
			result.Permission = permission
			return result, nil
		}
		s.logger.Warn("rbp lookup failed, falling back to user roles",
			slog.String("user_id", userID), slog.String("permission", string(permission)), slog.Any("error", err))

		roles, err := s.source.UserRoles(ctx, userID, companyID)
		if err == nil {
			return s.checkRoles(roles, permission)
		}
		s.logger.Warn("rbp role lookup failed",
			slog.String("user_id", userID), slog.Any("error", err))

		if s.failOpen {
			return rbp.CheckResult{
				HasPermission:  true,
				Role:           "DEFAULT",
				PermissionType: rbp.TypeDefaultAccess,
				Permission:     permission,
				Message:        "HR platform unavailable, default access granted",
			}, nil
		}
	}

	role := ""
	if p, err := PrincipalFromContext(ctx); err == nil && p.UserID == userID {
		role = p.Role
	}
	return s.checkLocal(role, permission)
}

func (s *RBPServiceImpl) checkRoles(roles []string, permission rbp.Permission) (rbp.CheckResult, error) {
	for _, role := range roles {
		ok, err := s.policy.Allowed(role, permission)
		if err != nil {
			return rbp.CheckResult{}, err
		}
		if ok {
			return rbp.CheckResult{
				HasPermission:  true,
				Role:           role,
				PermissionType: rbp.TypeCompensationAccess,
				Permission:     permission,
			}, nil
		}
	}
	return rbp.CheckResult{
		HasPermission:  false,
		PermissionType: rbp.TypeNone,
		Permission:     permission,
		Message:        "User does not have compensation access",
	}, nil
}

func (s *RBPServiceImpl) checkLocal(role string, permission rbp.Permission) (rbp.CheckResult, error) {
	ok, err := s.policy.Allowed(role, permission)
	if err != nil {
		return rbp.CheckResult{}, err
	}
	result := rbp.CheckResult{
		HasPermission:  ok,
		Role:           role,
		PermissionType: rbp.TypeLocalPolicy,
		Permission:     permission,
	}
	if !ok {
		result.PermissionType = rbp.TypeNone
		result.Message = fmt.Sprintf("role '%s' lacks %s", role, permission)
	}
	return result, nil
}

func (s *RBPServiceImpl) Authorize(ctx context.Context, permission rbp.Permission) (rbp.Principal, error) {
	principal, err := PrincipalFromContext(ctx)
	if err != nil {
		return rbp.Principal{}, err
	}

	result, err := s.CheckPermission(ctx, principal.UserID, principal.CompanyID, permission)
	if err != nil {
		return rbp.Principal{}, err
	}
	if !result.HasPermission {
		return rbp.Principal{}, fmt.Errorf("%w: %s required", rbp.ErrPermissionDenied, permission)
	}
	if result.Role != "" {
		principal.Role = result.Role
	}
	return principal, nil
}

// CanEditEmployee allows admins to edit anyone; other editors only their reports.
func (s *RBPServiceImpl) CanEditEmployee(ctx context.Context, employeeID string) (bool, error) {
	principal, err := s.Authorize(ctx, rbp.PermissionCompensationEdit)
	if err != nil {
		if errors.Is(err, rbp.ErrPermissionDenied) {
			return false, nil
		}
		return false, err
	}

	if rbp.CanEditAnyEmployee(principal.Role) {
		return true, nil
	}
	if s.source == nil {
		return false, nil
	}
	return s.source.IsManagerOf(ctx, principal.UserID, principal.CompanyID, employeeID)
}
