package auditlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/auth-service/internal"
	"github.com/frahmantamala/auth-service/internal/core/events"
)

const defaultListLimit = 100

type Service struct {
	repo   Repository
	writer *Writer
	logger *slog.Logger
}

func NewService(repo Repository, writer *Writer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		writer: writer,
		logger: logger,
	}
}

// Record persists an audit event synchronously; callers that must not
// block go through the Writer instead.
func (s *Service) Record(ctx context.Context, dto RecordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	entry := &Entry{
		EventName:    dto.EventName,
		EventDetails: dto.EventDetails,
		Username:     dto.Username,
		UserRole:     dto.UserRole,
		EmployeeID:   dto.EmployeeID,
		Timestamp:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("record audit entry failed", "error", err, "event_name", dto.EventName)
		return internal.NewInternalError("failed to record audit entry", err)
	}
	return nil
}

// List returns audit entries, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]EntryResponse, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("list audit entries failed", "error", err)
		return nil, internal.NewInternalError("failed to list audit entries", err)
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, e.ToResponse())
	}
	return responses, nil
}

// RegisterSubscriptions wires the audit trail to the auth events so
// registrations and logins leave a record without the auth path waiting
// on a write.
func (s *Service) RegisterSubscriptions(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(*events.UserRegisteredEvent); ok {
			s.writer.Enqueue(&Entry{
				EventName:    e.EventType(),
				EventDetails: fmt.Sprintf("user %s registered with email %s", e.Username, e.Email),
				Username:     e.Username,
				EmployeeID:   e.EmployeeID,
				Timestamp:    e.OccurredAt(),
			})
		}
		return nil
	})

	bus.Subscribe(events.EventTypeUserLoggedIn, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(*events.UserLoggedInEvent); ok {
			s.writer.Enqueue(&Entry{
				EventName:    e.EventType(),
				EventDetails: fmt.Sprintf("user %s logged in", e.Username),
				Username:     e.Username,
				UserRole:     strings.Join(e.Roles, ","),
				EmployeeID:   e.EmployeeID,
				Timestamp:    e.OccurredAt(),
			})
		}
		return nil
	})
}
