package waitlist

import (
	"time"

	"github.com/tarslive/waitlist-api/config/router"
	"github.com/tarslive/waitlist-api/internal/log"
	"github.com/tarslive/waitlist-api/internal/notifier"
	"github.com/tarslive/waitlist-api/pkg/factory"
	"gorm.io/gorm"
)

// SignupRateLimit is the per-client admission policy for the signup
// endpoint: at most Requests joins per Window.
type SignupRateLimit struct {
	Requests int
	Window   time.Duration
}

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db          *gorm.DB
	logger      *log.Logger
	cache       factory.Cache
	signupLimit SignupRateLimit
	notifier    notifier.Notifier

	service WaitlistService
}

func NewWaitlistServiceFactory(
	db *gorm.DB,
	logger *log.Logger,
	cache factory.Cache,
	signupLimit SignupRateLimit,
	emailNotifier notifier.Notifier,
) *DefaultWaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:          db,
		logger:      logger,
		cache:       cache,
		signupLimit: signupLimit,
		notifier:    emailNotifier,
	}
}

// CreateService builds the intake pipeline once and reuses it: the
// signup limiter must be a single shared instance for its per-client
// counters to mean anything.
func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	if f.service != nil {
		return f.service
	}

	limiterFactory := factory.NewDefaultRateLimiterFactory(
		f.signupLimit.Requests,
		f.signupLimit.Window,
		f.cache,
		f.logger,
	)

	repository := NewWaitlistRepository(f.db)
	f.service = NewWaitlistService(f.logger, repository, limiterFactory.CreateRateLimiter(), f.notifier)
	return f.service
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.CreateService())
}
