package waitlist

import (
	"github.com/tarslive/waitlist-api/config/router"
	apperrors "github.com/tarslive/waitlist-api/pkg/errors"
)

// NewWaitlistController mounts the public signup surface:
//
//	POST /v1/waitlist  join the waitlist
//	GET  /v1/waitlist  all entries in signup order
//
// Per-client signup throttling happens inside the service's intake
// pipeline, not in router middleware, so the limiter can be injected
// and tested with the rest of the pipeline.
func NewWaitlistController(service WaitlistService) *router.RESTController {
	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, nil, "", joinWaitlistHandler(service))
			rs.AddGetHandler(c, nil, "", getAllEntriesHandler(service))
		},
	)
}

func joinWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind signup request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid input data", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Join(ctx.Request.Context(), ctx.ClientIP(), &req)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				apperrors.GetValidationFields(err),
			)
		}

		return router.CreatedResult(response, "Waitlist entry")
	}
}

func getAllEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.GetAllEntries(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(response, "Waitlist entries retrieved successfully")
	}
}
