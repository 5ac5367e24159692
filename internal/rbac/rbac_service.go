package rbac

import (
	"sync"

	"go-ems/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewService wraps an enforcer. When the enforcer carries no policy yet the
// default role policy is seeded.
func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{enforcer: enforcer, logger: l}
	policies, err := enforcer.GetPolicy()
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		if err := s.seedDefaults(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *service) seedDefaults() error {
	if _, err := s.enforcer.AddPolicies(DefaultPolicies); err != nil {
		return err
	}
	if _, err := s.enforcer.AddGroupingPolicies(DefaultRoleHierarchy); err != nil {
		return err
	}
	s.logger.Info("rbac default policy loaded",
		zap.Int("policies", len(DefaultPolicies)),
		zap.Int("role_links", len(DefaultRoleHierarchy)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

// Can is a convenience for callers holding a principal.
func Can(s Service, p domain.Principal, resource, action string) (bool, error) {
	return s.Enforce(domain.EnforceRequest{
		Role:     p.NormalizedRole(),
		Resource: resource,
		Action:   action,
	})
}
