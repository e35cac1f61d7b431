package handler

import (
	"time"

	"github.com/KasumiMercury/primind-health-remind/internal/app"
)

type ReminderResponse struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	Repeat         string    `json:"repeat"`
	AdvanceMinutes int       `json:"advanceMinutes"`
	Notes          string    `json:"notes"`
	Dispatched     bool      `json:"dispatched"`
	Done           bool      `json:"done"`
	DueAt          time.Time `json:"dueAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type RemindersResponse struct {
	Reminders []ReminderResponse `json:"reminders"`
	Count     int32              `json:"count"`
}

type DismissReminderResponse struct {
	Reminder ReminderResponse `json:"reminder"`
	Deleted  bool             `json:"deleted"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func FromDTO(output app.ReminderOutput) ReminderResponse {
	return ReminderResponse{
		ID:             output.ID,
		Type:           output.Type,
		Title:          output.Title,
		Date:           output.Date,
		Time:           output.Time,
		ScheduledAt:    output.ScheduledAt,
		Repeat:         output.Repeat,
		AdvanceMinutes: output.AdvanceMinutes,
		Notes:          output.Notes,
		Dispatched:     output.Dispatched,
		Done:           output.Done,
		DueAt:          output.DueAt,
		CreatedAt:      output.CreatedAt,
		UpdatedAt:      output.UpdatedAt,
	}
}

func FromDTOs(output app.RemindersOutput) RemindersResponse {
	reminders := make([]ReminderResponse, 0, len(output.Reminders))
	for _, r := range output.Reminders {
		reminders = append(reminders, FromDTO(r))
	}

	return RemindersResponse{
		Reminders: reminders,
		Count:     output.Count,
	}
}
