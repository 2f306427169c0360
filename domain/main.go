package domain

import (
	"github.com/tarslive/waitlist-api/config"
	"github.com/tarslive/waitlist-api/domain/admin"
	"github.com/tarslive/waitlist-api/domain/monitoring"
	"github.com/tarslive/waitlist-api/domain/waitlist"
	"github.com/tarslive/waitlist-api/internal/notifier"
)

// SetupCoreDomain wires the repositories, intake pipeline and admin
// surface, and mounts every controller on the router.
func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	emailNotifier := notifier.NewResendNotifier(nil, appConfig.Logger)

	waitlistFactory := waitlist.NewWaitlistServiceFactory(
		appConfig.DB,
		appConfig.Logger,
		appConfig.Cache,
		waitlist.SignupRateLimit{
			Requests: appConfig.Config.SignupRateLimitRequests,
			Window:   appConfig.Config.SignupRateLimitWindow,
		},
		emailNotifier,
	)

	sessions := admin.NewSessionManagerFromEnv(appConfig.Logger)

	appConfig.RouterService.MountController(monitoring.NewMonitoringController(appConfig.DB, appConfig.Logger, appConfig.Cache))
	appConfig.RouterService.MountController(waitlistFactory.CreateController())
	appConfig.RouterService.MountController(admin.NewAdminController(waitlistFactory.CreateService(), sessions))
}
