package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanagement/internal/domain"
	"eventmanagement/internal/metrics"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	pdfRenderer    domain.PDFRenderer
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService. emailService may be nil, in which case
// no registration confirmations are sent.
func NewEventService(eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	pdfRenderer domain.PDFRenderer,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		pdfRenderer:    pdfRenderer,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.contextTimeout)
}

// withTimeout bounds ctx by d. A non-positive d only adds cancellation.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	events, err := s.eventRepo.FindAll(ctx)
	if err != nil {
		metrics.EventOperations.WithLabelValues("list", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	metrics.EventOperations.WithLabelValues("list", metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "retrieved all events", "count", len(events))
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id int64) (*domain.Event, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.EventOperations.WithLabelValues("get", metrics.OutcomeNotFound).Inc()
			s.logger.WarnContext(ctx, "event not found", "event_id", id)
			return nil, false, nil
		}
		metrics.EventOperations.WithLabelValues("get", metrics.OutcomeError).Inc()
		return nil, false, fmt.Errorf("get event: %w", err)
	}
	metrics.EventOperations.WithLabelValues("get", metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "retrieved event", "event_id", id)
	return event, true, nil
}

// CreateEvent stores a copy of draft's details. Any ID or registrations on draft are ignored:
// new events start without registered users and get their ID from the store.
func (s *eventService) CreateEvent(ctx context.Context, draft *domain.Event) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if draft == nil {
		return nil, errors.New("event is required")
	}
	event := domain.NewEvent(draft.Name, draft.Description, draft.Date, draft.Location, draft.Time)
	if err := s.eventRepo.Save(ctx, event); err != nil {
		metrics.EventOperations.WithLabelValues("create", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("create event: %w", err)
	}
	metrics.EventOperations.WithLabelValues("create", metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "created new event", "event_id", event.ID)
	return event, nil
}

// UpdateEvent replaces name, description, date, location and time with the values from details.
// Registrations are kept.
func (s *eventService) UpdateEvent(ctx context.Context, id int64, details *domain.Event) (*domain.Event, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if details == nil {
		return nil, false, errors.New("event details are required")
	}
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.EventOperations.WithLabelValues("update", metrics.OutcomeNotFound).Inc()
			s.logger.WarnContext(ctx, "event not found for update", "event_id", id)
			return nil, false, nil
		}
		metrics.EventOperations.WithLabelValues("update", metrics.OutcomeError).Inc()
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	event.ApplyDetails(details)
	if err := s.eventRepo.Save(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted between the lookup and the write.
			metrics.EventOperations.WithLabelValues("update", metrics.OutcomeNotFound).Inc()
			s.logger.WarnContext(ctx, "event not found for update", "event_id", id)
			return nil, false, nil
		}
		metrics.EventOperations.WithLabelValues("update", metrics.OutcomeError).Inc()
		return nil, false, fmt.Errorf("update event: %w", err)
	}
	metrics.EventOperations.WithLabelValues("update", metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "updated event", "event_id", event.ID)
	return event, true, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.eventRepo.ExistsByID(ctx, id)
	if err != nil {
		metrics.EventOperations.WithLabelValues("delete", metrics.OutcomeError).Inc()
		return false, fmt.Errorf("check event: %w", err)
	}
	if !exists {
		metrics.EventOperations.WithLabelValues("delete", metrics.OutcomeNotFound).Inc()
		s.logger.WarnContext(ctx, "event not found for deletion", "event_id", id)
		return false, nil
	}
	if err := s.eventRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.EventOperations.WithLabelValues("delete", metrics.OutcomeNotFound).Inc()
			s.logger.WarnContext(ctx, "event not found for deletion", "event_id", id)
			return false, nil
		}
		metrics.EventOperations.WithLabelValues("delete", metrics.OutcomeError).Inc()
		return false, fmt.Errorf("delete event: %w", err)
	}
	metrics.EventOperations.WithLabelValues("delete", metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "deleted event", "event_id", id)
	return true, nil
}

func (s *eventService) RegisterEvent(ctx context.Context, eventID int64, req domain.RegistrationRequest) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.Registrations.WithLabelValues(metrics.OutcomeNotFound).Inc()
			s.logger.WarnContext(ctx, "event not found", "event_id", eventID)
			return fmt.Errorf("event %d: %w", eventID, domain.ErrEventNotFound)
		}
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("get event: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.Registrations.WithLabelValues(metrics.OutcomeNotFound).Inc()
			s.logger.WarnContext(ctx, "user not found", "user_id", req.UserID)
			return fmt.Errorf("user %d: %w", req.UserID, domain.ErrUserNotFound)
		}
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("get user: %w", err)
	}

	if !event.Register(*user) {
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		s.logger.InfoContext(ctx, "user already registered for event", "user_id", user.ID, "event_id", eventID)
		return nil
	}
	if err := s.eventRepo.Save(ctx, event); err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return fmt.Errorf("save registration: %w", err)
	}
	metrics.Registrations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "user registered for event", "user_id", user.ID, "event_id", eventID)

	s.sendConfirmation(ctx, event, user)
	return nil
}

// sendConfirmation is best effort: a failed email never fails the registration.
// The stored user is the recipient; the request's contact fields are not trusted.
func (s *eventService) sendConfirmation(ctx context.Context, event *domain.Event, user *domain.User) {
	if s.emailService == nil {
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		Email:     user.Email,
		Name:      user.Name,
		EventName: event.Name,
		Date:      event.Date,
		Time:      event.Time,
		Location:  event.Location,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration confirmation not sent", "event_id", event.ID, "user_id", user.ID, "err", err)
	}
}

func (s *eventService) GenerateEventPDF(ctx context.Context, id int64) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.EventOperations.WithLabelValues("pdf", metrics.OutcomeNotFound).Inc()
			s.logger.WarnContext(ctx, "event not found for PDF generation", "event_id", id)
			return nil, false, nil
		}
		metrics.EventOperations.WithLabelValues("pdf", metrics.OutcomeError).Inc()
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	start := time.Now()
	pdf, err := s.pdfRenderer.Render(event)
	metrics.PDFRenderDuration.Observe(time.Since(start).Seconds())
	if err == nil && len(pdf) == 0 {
		err = errors.New("renderer returned an empty document")
	}
	if err != nil {
		metrics.EventOperations.WithLabelValues("pdf", metrics.OutcomeError).Inc()
		s.logger.ErrorContext(ctx, "error generating PDF", "event_id", id, "err", err)
		return nil, true, fmt.Errorf("event %d: %w: %w", id, domain.ErrPDFRender, err)
	}
	metrics.EventOperations.WithLabelValues("pdf", metrics.OutcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "PDF generated for event", "event_id", id, "bytes", len(pdf))
	return pdf, true, nil
}
