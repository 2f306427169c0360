package waitlist

import (
	"context"
	"sync"
	"time"

	"github.com/tarslive/waitlist-api/internal/log"
	"github.com/tarslive/waitlist-api/internal/models"
	"github.com/tarslive/waitlist-api/internal/notifier"
	apperrors "github.com/tarslive/waitlist-api/pkg/errors"
	"github.com/tarslive/waitlist-api/pkg/ratelimit"
)

const notifyTimeout = 15 * time.Second

type WaitlistService interface {
	// Join runs the signup intake pipeline for one request: rate check,
	// validation, duplicate check, persistence, position computation
	// and best-effort welcome email. clientKey identifies the caller
	// for rate limiting (normally the client IP).
	Join(ctx context.Context, clientKey string, req *JoinWaitlistRequest) (*JoinWaitlistResponse, error)

	// GetAllEntries returns every entry ordered by creation time ascending.
	GetAllEntries(ctx context.Context) (*ListWaitlistResponse, error)

	// ListEntries returns one page of entries plus the total count.
	ListEntries(ctx context.Context, page, limit int) (*PagedWaitlistResponse, error)

	// ExportEntries returns every entry, oldest first, as raw models
	// for serialization into export formats.
	ExportEntries(ctx context.Context) ([]*models.WaitlistEntry, error)

	// FindAdminEntry returns the entry for email only when it exists
	// and is flagged as admin; otherwise an Unauthorized error.
	FindAdminEntry(ctx context.Context, email string) (*WaitlistEntryResponse, error)

	// ResetWithSeedEntries clears the table and repopulates it with
	// the given sample rows.
	ResetWithSeedEntries(ctx context.Context, entries []*models.WaitlistEntry) error
}

type waitlistService struct {
	logger        *log.Logger
	repository    WaitlistRepository
	signupLimiter ratelimit.RateLimiter
	notifier      notifier.Notifier

	// notifyWG tracks in-flight welcome-email goroutines so tests can
	// wait for them; production code never blocks on it.
	notifyWG sync.WaitGroup
}

func NewWaitlistService(
	logger *log.Logger,
	repository WaitlistRepository,
	signupLimiter ratelimit.RateLimiter,
	emailNotifier notifier.Notifier,
) WaitlistService {
	return &waitlistService{
		logger:        logger,
		repository:    repository,
		signupLimiter: signupLimiter,
		notifier:      emailNotifier,
	}
}

func (s *waitlistService) Join(ctx context.Context, clientKey string, req *JoinWaitlistRequest) (*JoinWaitlistResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	// 1. Rate check. Denied requests never touch the store.
	if s.signupLimiter != nil {
		limited, err := s.signupLimiter.IsLimited(clientKey)
		if err != nil {
			// Limiter infrastructure failure: admit rather than block
			// legitimate signups, but make noise about it.
			logger.Error("Signup rate limiter error, admitting request", "error", err, "client", clientKey)
		} else if limited {
			logger.Warn("Signup rate limit exceeded", "client", clientKey)
			return nil, apperrors.NewTooManyRequestsError("Too many requests. Please try again later.", nil)
		}
	}

	// 2. Validate. Every violated field rule is reported at once.
	if violations := ValidateJoinRequest(req); len(violations) > 0 {
		logger.Info("Signup rejected by validation", "violations", len(violations))
		return nil, apperrors.NewValidationError("Invalid input data", violations)
	}

	// 3. Duplicate check ahead of the insert for a friendly error.
	existing, err := s.repository.FindEntryByEmail(ctx, req.Email)
	if err != nil && apperrors.GetErrorType(err) != apperrors.ErrorTypeNotFound {
		logger.Error("Failed to check for existing waitlist entry", "error", err)
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("Email already registered", nil)
	}

	// 4. Persist. The unique index closes the check-then-insert race:
	// a duplicate-key failure here is reported exactly like step 3.
	entry, err := s.repository.CreateEntry(ctx, ToWaitlistEntryModel(req))
	if err != nil {
		if apperrors.GetErrorType(err) != apperrors.ErrorTypeConflict {
			logger.Error("Failed to create waitlist entry", "error", err)
		}
		return nil, err
	}

	// 5. Position: 1-based chronological rank, computed right after the
	// insert so the new entry counts itself.
	position, err := s.repository.CountCreatedAtOrBefore(ctx, entry.CreatedAt)
	if err != nil {
		logger.Error("Failed to compute waitlist position", "id", entry.ID, "error", err)
		return nil, err
	}

	// 6. Notify, fire-and-forget. Failures are logged, never surfaced,
	// and never roll back the persisted entry.
	s.dispatchWelcomeEmail(entry)

	response := ToJoinWaitlistResponse(entry, position)
	return &response, nil
}

func (s *waitlistService) dispatchWelcomeEmail(entry *models.WaitlistEntry) {
	if s.notifier == nil {
		return
	}

	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()

		// Detached from the request context: the response does not
		// wait for delivery.
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.SendWelcomeEmail(ctx, entry.Email, entry.Name); err != nil {
			s.logger.Error("Failed to send welcome email", "email", entry.Email, "error", err)
		}
	}()
}

func (s *waitlistService) GetAllEntries(ctx context.Context) (*ListWaitlistResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.GetAllEntries(ctx)
	if err != nil {
		logger.Error("Failed to get all waitlist entries", "error", err)
		return nil, err
	}

	return &ListWaitlistResponse{
		Total:   int64(len(entries)),
		Entries: ToWaitlistEntryResponses(entries),
	}, nil
}

func (s *waitlistService) ListEntries(ctx context.Context, page, limit int) (*PagedWaitlistResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	entries, total, err := s.repository.ListEntries(ctx, (page-1)*limit, limit)
	if err != nil {
		logger.Error("Failed to list waitlist entries", "page", page, "limit", limit, "error", err)
		return nil, err
	}

	return &PagedWaitlistResponse{
		Total:   total,
		Entries: ToWaitlistEntryResponses(entries),
		Page:    page,
		Limit:   limit,
	}, nil
}

func (s *waitlistService) ExportEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.GetAllEntries(ctx)
	if err != nil {
		logger.Error("Failed to fetch waitlist entries for export", "error", err)
		return nil, err
	}

	return entries, nil
}

func (s *waitlistService) FindAdminEntry(ctx context.Context, email string) (*WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entry, err := s.repository.FindEntryByEmail(ctx, email)
	if err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeNotFound {
			return nil, apperrors.NewUnauthorizedError("Unauthorized", nil)
		}
		logger.Error("Failed to look up admin entry", "error", err)
		return nil, err
	}

	if !entry.IsAdmin {
		logger.Warn("Admin login denied for non-admin entry", "email", email)
		return nil, apperrors.NewUnauthorizedError("Unauthorized", nil)
	}

	response := ToWaitlistEntryResponse(entry)
	return &response, nil
}

func (s *waitlistService) ResetWithSeedEntries(ctx context.Context, entries []*models.WaitlistEntry) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if err := s.repository.ResetWithSeedEntries(ctx, entries); err != nil {
		logger.Error("Failed to seed waitlist entries", "error", err)
		return err
	}

	logger.Info("Waitlist reset with seed entries", "count", len(entries))
	return nil
}
