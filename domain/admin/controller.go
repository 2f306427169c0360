package admin

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tarslive/waitlist-api/config/router"
	"github.com/tarslive/waitlist-api/domain/waitlist"
	apperrors "github.com/tarslive/waitlist-api/pkg/errors"
)

type AdminLoginRequest struct {
	Email string `json:"email" binding:"required,max=255"`
}

type AdminLoginResponse struct {
	Email string `json:"email"`
}

// NewAdminController mounts the password-gated dashboard API:
//
//	POST /v1/admin/login     grant a session for an admin-flagged email
//	GET  /v1/admin/waitlist  paginated entries (session required)
//	GET  /v1/admin/export    CSV download (session required)
func NewAdminController(service waitlist.WaitlistService, sessions *SessionManager) *router.RESTController {
	return router.NewVersionedRESTController(
		"AdminController",
		"v1",
		"/admin",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, nil, "login", loginHandler(service, sessions))
			rs.AddGetHandler(c, nil, "waitlist", listEntriesHandler(service), sessions.RequireSession())
			rs.AddGetRawHandler(c, nil, "export", exportHandler(service), sessions.RequireSession())
		},
	)
}

func loginHandler(service waitlist.WaitlistService, sessions *SessionManager) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req AdminLoginRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind admin login request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		entry, err := service.FindAdminEntry(ctx.Request.Context(), req.Email)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		token, err := sessions.IssueToken(entry.Email)
		if err != nil {
			logger.Error("Failed to issue admin session token", "error", err)
			return router.InternalServerErrorResult("Unable to start admin session")
		}

		sessions.SetSessionCookie(ctx, token)

		return router.OKResult(AdminLoginResponse{Email: entry.Email}, "Admin login successful")
	}
}

func listEntriesHandler(service waitlist.WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		page := parsePositiveQueryInt(ctx, "page", 1)
		limit := parsePositiveQueryInt(ctx, "limit", waitlist.DefaultPageLimit)

		response, err := service.ListEntries(ctx.Request.Context(), page, limit)
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

func exportHandler(service waitlist.WaitlistService) router.MiddlewareFunc {
	return func(ctx *router.RequestContext) {
		logger := router.GetLogger(ctx)

		entries, err := service.ExportEntries(ctx.Request.Context())
		if err != nil {
			logger.Error("Failed to export waitlist entries", "error", err)
			ctx.JSON(
				apperrors.HTTPStatusCode(err),
				router.ErrorResult(apperrors.HTTPStatusCode(err), apperrors.GetHumanReadableMessage(err), nil).ToJSON(),
			)
			return
		}

		body := BuildEntriesCSV(entries)

		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(time.Now())))
		ctx.Data(http.StatusOK, "text/csv", body)
	}
}

func parsePositiveQueryInt(ctx *router.RequestContext, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}

	return value
}
