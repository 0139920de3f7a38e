package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered = "user.registered"
	EventTypeUserLoggedIn   = "user.logged_in"
)

type UserRegisteredEvent struct {
	BaseEvent
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
}

func NewUserRegisteredEvent(userID int64, username, email string, employeeID *int64) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":     userID,
				"username":    username,
				"email":       email,
				"employee_id": employeeID,
			},
		},
		UserID:     userID,
		Username:   username,
		Email:      email,
		EmployeeID: employeeID,
	}
}

type UserLoggedInEvent struct {
	BaseEvent
	UserID     int64    `json:"user_id"`
	Username   string   `json:"username"`
	Roles      []string `json:"roles"`
	EmployeeID *int64   `json:"employee_id,omitempty"`
}

func NewUserLoggedInEvent(userID int64, username string, roles []string, employeeID *int64) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserLoggedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"username": username,
				"roles":    roles,
			},
		},
		UserID:     userID,
		Username:   username,
		Roles:      roles,
		EmployeeID: employeeID,
	}
}
