package leave

type LeaveResponse struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	PolicyID        string  `json:"policy_id"`
	ThreadID        string  `json:"thread_id,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	StartDayType    string  `json:"start_day_type"`
	EndDayType      string  `json:"end_day_type"`
	TotalDays       string  `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApproverID      *string `json:"approver_id,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	ApproverRemarks *string `json:"approver_remarks,omitempty"`
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		CompanyID:       l.CompanyID.String(),
		EmployeeID:      l.EmployeeID.String(),
		PolicyID:        l.PolicyID.String(),
		ThreadID:        l.ThreadID,
		StartDate:       l.StartDate.Format(DateLayout),
		EndDate:         l.EndDate.Format(DateLayout),
		StartDayType:    l.StartDayType,
		EndDayType:      l.EndDayType,
		TotalDays:       l.TotalDays.StringFixed(1),
		Reason:          l.Reason,
		Status:          l.Status,
		ApproverRemarks: l.ApproverRemarks,
	}
	if l.ApproverID != nil {
		v := l.ApproverID.String()
		resp.ApproverID = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, mapToResponse(l))
	}
	return out
}
