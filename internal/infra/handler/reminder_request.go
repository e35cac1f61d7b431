package handler

type CreateReminderRequest struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Repeat         string `json:"repeat"`
	AdvanceMinutes int    `json:"advanceMinutes"`
	Notes          string `json:"notes"`
}

// UpdateReminderRequest is a partial update; omitted fields keep their value.
type UpdateReminderRequest struct {
	Type           *string `json:"type"`
	Title          *string `json:"title"`
	Date           *string `json:"date"`
	Time           *string `json:"time"`
	Repeat         *string `json:"repeat"`
	AdvanceMinutes *int    `json:"advanceMinutes"`
	Notes          *string `json:"notes"`
}

const defaultSnoozeMinutes = 5

// SnoozeReminderRequest may be sent with an empty body; Minutes then falls
// back to defaultSnoozeMinutes.
type SnoozeReminderRequest struct {
	Minutes *int `json:"minutes"`
}

func (r SnoozeReminderRequest) minutes() int {
	if r.Minutes == nil {
		return defaultSnoozeMinutes
	}

	return *r.Minutes
}
