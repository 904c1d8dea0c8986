package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
)

type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}

type Service interface {
	Enforce(req EnforceRequest) (bool, error)
	// Grant adds a permission for a role at runtime, for example a
	// company specific role defined by an operator.
	Grant(role, resource, action string) error
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService(enforcer *casbin.Enforcer) Service {
	return &service{enforcer: enforcer}
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	if req.Role == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}

func (s *service) Grant(role, resource, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.enforcer.AddPolicy(role, resource, action)
	return err
}
