package balance

type BalanceResponse struct {
	PolicyID       string `json:"policy_id"`
	Year           int    `json:"year"`
	OpeningBalance string `json:"opening_balance"`
	Credited       string `json:"credited"`
	Used           string `json:"used"`
	Pending        string `json:"pending"`
	Available      string `json:"available"`
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		PolicyID:       b.PolicyID.String(),
		Year:           b.Year,
		OpeningBalance: b.OpeningBalance.StringFixed(1),
		Credited:       b.Credited.StringFixed(1),
		Used:           b.Used.StringFixed(1),
		Pending:        b.Pending.StringFixed(1),
		Available:      b.Available().StringFixed(1),
	}
}
