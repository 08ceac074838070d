package rbac

import (
	"context"
	"strings"
	"sync"

	"go-patrol/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

// LoadPolicy replaces the in-memory policy with the stored one.
func (s *service) LoadPolicy(ctx context.Context) error {
	perms, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return err
	}
	parents, err := s.repo.GetRoleParents(ctx)
	if err != nil {
		return err
	}
	if len(perms) == 0 {
		s.logger.Warn("role_permissions is empty, using built-in policy")
		perms, parents = DefaultPermissions, DefaultRoleParents
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	for _, p := range parents {
		if _, err := s.enforcer.AddGroupingPolicy(normalizeRole(p.Role), normalizeRole(p.Parent)); err != nil {
			return err
		}
	}
	for _, p := range perms {
		if _, err := s.enforcer.AddPolicy(normalizeRole(p.Role), p.Resource, p.Action); err != nil {
			return err
		}
	}

	s.logger.Info("rbac policy loaded",
		zap.Int("role_permissions", len(perms)),
		zap.Int("role_parents", len(parents)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	role := normalizeRole(req.Role)
	if role == "" {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
