package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	workflowerrors "go-leaveflow/internal/workflow/errors"

	"github.com/google/uuid"
)

const threadIDPrefix = "leave"

// ThreadID identifies one approval run: leave_<company>_<employee>_<unix ms>.
type ThreadID struct {
	CompanyID  string
	EmployeeID string
	CreatedAt  time.Time
}

func NewThreadID(companyID, employeeID string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%d", threadIDPrefix, companyID, employeeID, at.UnixMilli())
}

func ParseThreadID(raw string) (ThreadID, error) {
	parts := strings.Split(raw, "_")
	if len(parts) != 4 || parts[0] != threadIDPrefix {
		return ThreadID{}, fmt.Errorf("%w: %q", workflowerrors.ErrInvalidThreadID, raw)
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return ThreadID{}, fmt.Errorf("%w: company segment of %q", workflowerrors.ErrInvalidThreadID, raw)
	}
	if _, err := uuid.Parse(parts[2]); err != nil {
		return ThreadID{}, fmt.Errorf("%w: employee segment of %q", workflowerrors.ErrInvalidThreadID, raw)
	}
	ms, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || ms <= 0 {
		return ThreadID{}, fmt.Errorf("%w: timestamp segment of %q", workflowerrors.ErrInvalidThreadID, raw)
	}
	return ThreadID{
		CompanyID:  parts[1],
		EmployeeID: parts[2],
		CreatedAt:  time.UnixMilli(ms).UTC(),
	}, nil
}
