package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leaveflow/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) rbac.Service {
	t.Helper()
	enforcer, err := rbac.NewEnforcer()
	require.NoError(t, err)
	return rbac.NewService(enforcer)
}

func TestRBACService_Enforce(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		role     string
		resource string
		action   string
		want     bool
	}{
		{rbac.RoleEmployee, rbac.ResourceLeaveWorkflow, rbac.ActionStart, true},
		{rbac.RoleEmployee, rbac.ResourceLeaveWorkflow, rbac.ActionDecideManager, true},
		{rbac.RoleEmployee, rbac.ResourceLeaveWorkflow, rbac.ActionDecideHR, false},
		{rbac.RoleEmployee, rbac.ResourceLeaveRequest, rbac.ActionReadAll, false},
		{rbac.RoleHR, rbac.ResourceLeaveWorkflow, rbac.ActionDecideHR, true},
		{rbac.RoleHR, rbac.ResourceLeaveWorkflow, rbac.ActionStart, true},
		{rbac.RoleAdmin, rbac.ResourceLeaveWorkflow, rbac.ActionDecideHR, true},
		{rbac.RoleAdmin, rbac.ResourceLeaveRequest, rbac.ActionReadAll, true},
		{"contractor", rbac.ResourceLeaveWorkflow, rbac.ActionStart, false},
		{"", rbac.ResourceLeaveWorkflow, rbac.ActionStart, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.action, func(t *testing.T) {
			allowed, err := svc.Enforce(rbac.EnforceRequest{Role: tt.role, Resource: tt.resource, Action: tt.action})
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestRBACService_Grant(t *testing.T) {
	svc := newService(t)
	req := rbac.EnforceRequest{Role: "payroll_officer", Resource: rbac.ResourceLeaveRequest, Action: rbac.ActionReadAll}

	allowed, err := svc.Enforce(req)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, svc.Grant(req.Role, req.Resource, req.Action))

	allowed, err = svc.Enforce(req)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newService(t)

	for role, want := range map[string]int{
		rbac.RoleHR:       http.StatusOK,
		rbac.RoleAdmin:    http.StatusOK,
		rbac.RoleEmployee: http.StatusForbidden,
		"":                http.StatusForbidden,
	} {
		r := gin.New()
		r.POST("/hr/decide", func(c *gin.Context) {
			c.Set("role", role)
			c.Next()
		}, rbac.Authorize(svc, rbac.ResourceLeaveWorkflow, rbac.ActionDecideHR), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hr/decide", nil))
		assert.Equal(t, want, w.Code, role)
	}
}
