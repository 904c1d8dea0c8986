// Package validation checks a candidate leave request against the employee,
// the policy, the balance and the employee's other requests. It performs no
// I/O; callers load every input first.
package validation

import (
	"fmt"
	"strings"
	"time"

	"go-leaveflow/internal/balance"
	"go-leaveflow/internal/employee"
	"go-leaveflow/internal/leave"

	"github.com/shopspring/decimal"
)

const (
	CodeInvalidDateRange   = "INVALID_DATE_RANGE"
	CodeNoWorkingDays      = "NO_WORKING_DAYS"
	CodeEmployeeNotFound   = "EMPLOYEE_NOT_FOUND"
	CodeEmployeeInactive   = "EMPLOYEE_INACTIVE"
	CodePolicyNotFound     = "POLICY_NOT_FOUND"
	CodePolicyInactive     = "POLICY_INACTIVE"
	CodeGenderNotEligible  = "POLICY_NOT_APPLICABLE_GENDER"
	CodeTenureNotMet       = "POLICY_TENURE_NOT_MET"
	CodeBelowMinDays       = "BELOW_MIN_DAYS"
	CodeExceedsMaxDays     = "EXCEEDS_MAX_DAYS"
	CodeNoBalance          = "NO_BALANCE"
	CodeInsufficientBal    = "INSUFFICIENT_BALANCE"
	CodeInsufficientNotice = "INSUFFICIENT_NOTICE"
	CodeOverlappingLeave   = "OVERLAPPING_LEAVE"
)

type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Code + ": " + v.Message
}

// Candidate is the request being validated. TotalDays is already net of
// weekends, holidays and half days.
type Candidate struct {
	StartDate time.Time
	EndDate   time.Time
	TotalDays decimal.Decimal
}

type Input struct {
	Candidate Candidate
	Employee  *employee.Employee
	Policy    *leave.Policy
	// Balance is nil when the employee has no balance for the policy year.
	Balance  *balance.LeaveBalance
	Existing []leave.LeaveRequest
	Today    time.Time
}

type check func(in Input) []Violation

var checks = []check{
	checkDateRange,
	checkWorkingDays,
	checkEmployee,
	checkPolicy,
	checkDayLimits,
	checkBalance,
	checkNotice,
	checkOverlap,
}

// Validate runs every check in order and returns all violations found. An
// empty result means the candidate may proceed.
func Validate(in Input) []Violation {
	violations := make([]Violation, 0)
	for _, c := range checks {
		violations = append(violations, c(in)...)
	}
	return violations
}

// Messages flattens violations into "CODE: message" strings.
func Messages(violations []Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.String())
	}
	return out
}

func checkDateRange(in Input) []Violation {
	if leave.DateOnly(in.Candidate.EndDate).Before(leave.DateOnly(in.Candidate.StartDate)) {
		return []Violation{{
			Code:    CodeInvalidDateRange,
			Message: "End date cannot be before start date.",
		}}
	}
	return nil
}

// checkWorkingDays rejects ranges made only of weekends and holidays,
// whatever the policy minimum is. Nothing can be reserved for them.
func checkWorkingDays(in Input) []Violation {
	c := in.Candidate
	if leave.DateOnly(c.EndDate).Before(leave.DateOnly(c.StartDate)) {
		return nil
	}
	if !c.TotalDays.IsPositive() {
		return []Violation{{
			Code:    CodeNoWorkingDays,
			Message: "The selected dates contain no working days.",
		}}
	}
	return nil
}

func checkEmployee(in Input) []Violation {
	switch {
	case in.Employee == nil:
		return []Violation{{Code: CodeEmployeeNotFound, Message: "Employee not found."}}
	case !in.Employee.IsActive:
		return []Violation{{Code: CodeEmployeeInactive, Message: "Employee is not active."}}
	}
	return nil
}

func checkPolicy(in Input) []Violation {
	p := in.Policy
	if p == nil {
		return []Violation{{Code: CodePolicyNotFound, Message: "Leave policy not found."}}
	}
	if !p.IsActive {
		return []Violation{{Code: CodePolicyInactive, Message: "Leave policy is not active."}}
	}
	if in.Employee == nil {
		return nil
	}

	var out []Violation
	if p.ApplicableGender != nil && *p.ApplicableGender != "" {
		gender := ""
		if in.Employee.Gender != nil {
			gender = *in.Employee.Gender
		}
		if !strings.EqualFold(gender, *p.ApplicableGender) {
			out = append(out, Violation{
				Code:    CodeGenderNotEligible,
				Message: fmt.Sprintf("This leave type is only available to %s employees.", strings.ToLower(*p.ApplicableGender)),
			})
		}
	}

	if p.MinTenureMonths > 0 {
		tenure := monthsBetween(in.Employee.DateOfJoining, in.Today)
		if tenure < p.MinTenureMonths {
			out = append(out, Violation{
				Code:    CodeTenureNotMet,
				Message: fmt.Sprintf("Requires %d months of service. You have %d months.", p.MinTenureMonths, tenure),
			})
		}
	}
	return out
}

func checkDayLimits(in Input) []Violation {
	p := in.Policy
	if p == nil {
		return nil
	}
	days := in.Candidate.TotalDays

	var out []Violation
	if days.LessThan(p.MinDays) {
		out = append(out, Violation{
			Code:    CodeBelowMinDays,
			Message: fmt.Sprintf("Minimum %s days required.", p.MinDays.StringFixed(1)),
		})
	}
	if p.MaxDays.Valid && days.GreaterThan(p.MaxDays.Decimal) {
		out = append(out, Violation{
			Code:    CodeExceedsMaxDays,
			Message: fmt.Sprintf("Maximum %s days allowed.", p.MaxDays.Decimal.StringFixed(1)),
		})
	}
	return out
}

func checkBalance(in Input) []Violation {
	if in.Policy == nil {
		return nil
	}
	if in.Balance == nil {
		return []Violation{{Code: CodeNoBalance, Message: "No leave balance found for this leave type."}}
	}
	available := in.Balance.Available()
	if available.LessThan(in.Candidate.TotalDays) {
		return []Violation{{
			Code: CodeInsufficientBal,
			Message: fmt.Sprintf("Insufficient balance. Available: %s, Requested: %s",
				available.StringFixed(1), in.Candidate.TotalDays.StringFixed(1)),
		}}
	}
	return nil
}

func checkNotice(in Input) []Violation {
	p := in.Policy
	if p == nil || p.NoticeExempt {
		return nil
	}
	given := int(leave.DateOnly(in.Candidate.StartDate).Sub(leave.DateOnly(in.Today)).Hours() / 24)
	if given < p.AdvanceNoticeDays {
		return []Violation{{
			Code:    CodeInsufficientNotice,
			Message: fmt.Sprintf("Requires %d days advance notice. You provided %d days.", p.AdvanceNoticeDays, given),
		}}
	}
	return nil
}

func checkOverlap(in Input) []Violation {
	start, end := leave.DateOnly(in.Candidate.StartDate), leave.DateOnly(in.Candidate.EndDate)
	for _, r := range in.Existing {
		if r.Status != leave.StatusPending && r.Status != leave.StatusApproved {
			continue
		}
		if !leave.DateOnly(r.StartDate).After(end) && !leave.DateOnly(r.EndDate).Before(start) {
			return []Violation{{
				Code:    CodeOverlappingLeave,
				Message: "You already have a leave request for overlapping dates.",
			}}
		}
	}
	return nil
}

// monthsBetween counts whole calendar months from "from" to "to".
func monthsBetween(from, to time.Time) int {
	from, to = leave.DateOnly(from), leave.DateOnly(to)
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}
