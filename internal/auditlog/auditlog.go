package auditlog

import (
	"context"
	"time"
)

// Entry is one audit event. EventName is the only required field; the
// rest is whatever identity context was available at the call site.
type Entry struct {
	ID           int64
	EventName    string
	EventDetails string
	Username     string
	UserRole     string
	EmployeeID   *int64
	Timestamp    time.Time
}

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, error)
}

// RecordDTO accepts audit events over HTTP.
type RecordDTO struct {
	EventName    string `json:"event_name"`
	EventDetails string `json:"event_details"`
	Username     string `json:"username"`
	UserRole     string `json:"user_role"`
	EmployeeID   *int64 `json:"employee_id,omitempty"`
}

type EntryResponse struct {
	ID           int64     `json:"id"`
	EventName    string    `json:"event_name"`
	EventDetails string    `json:"event_details"`
	Username     string    `json:"username"`
	UserRole     string    `json:"user_role"`
	EmployeeID   *int64    `json:"employee_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ValidationError represents a simple validation error from DTO
// validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d RecordDTO) Validate() error {
	if d.EventName == "" {
		return ValidationError{Msg: "event_name is required"}
	}
	return nil
}

func (e *Entry) ToResponse() EntryResponse {
	return EntryResponse{
		ID:           e.ID,
		EventName:    e.EventName,
		EventDetails: e.EventDetails,
		Username:     e.Username,
		UserRole:     e.UserRole,
		EmployeeID:   e.EmployeeID,
		Timestamp:    e.Timestamp,
	}
}
