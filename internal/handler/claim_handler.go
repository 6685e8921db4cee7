package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/internal/service"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/middleware"
	"github.com/chernandez90/InsurancePortal/pkg/ratelimit"
	"github.com/chernandez90/InsurancePortal/pkg/response"
)

// ClaimHandler serves the claims API.
type ClaimHandler struct {
	submitter      service.ClaimSubmitter
	queries        service.ClaimQueryHandler
	authMiddleware *middleware.AuthMiddleware
	submitLimiter  *ratelimit.Limiter
}

// NewClaimHandler creates a claims handler. submitLimiter may be nil.
func NewClaimHandler(submitter service.ClaimSubmitter, queries service.ClaimQueryHandler, authMiddleware *middleware.AuthMiddleware, submitLimiter *ratelimit.Limiter) *ClaimHandler {
	return &ClaimHandler{
		submitter:      submitter,
		queries:        queries,
		authMiddleware: authMiddleware,
		submitLimiter:  submitLimiter,
	}
}

// RegisterRoutes registers the claims routes.
func (h *ClaimHandler) RegisterRoutes(r *gin.Engine) {
	claims := r.Group("/api/v1/claims")
	claims.Use(h.authMiddleware.RequireAuth())
	{
		submit := []gin.HandlerFunc{h.Submit}
		if h.submitLimiter != nil {
			submit = append([]gin.HandlerFunc{ratelimit.Middleware(h.submitLimiter, ratelimit.ByUserOrIP)}, submit...)
		}
		claims.POST("", submit...)
		claims.GET("", h.List)
		claims.GET("/:id", h.Get)
	}
}

// Submit files a new claim.
func (h *ClaimHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid claim request")
		response.BadRequest(c, err.Error())
		return
	}

	claim, err := h.submitter.Submit(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		if ve, ok := service.IsValidationError(err); ok {
			response.ValidationError(c, ve.Field, ve.Error())
			return
		}
		if errors.Is(err, service.ErrUnauthenticated) {
			response.Unauthorized(c, "unauthorized")
			return
		}
		l.Error().Err(err).Msg("submit claim failed")
		response.InternalError(c, "failed to submit claim")
		return
	}

	response.Created(c, claim)
}

// List returns every claim in insertion order.
func (h *ClaimHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	claims, err := h.queries.GetAll(ctx)
	if err != nil {
		l.Error().Err(err).Msg("list claims failed")
		response.InternalError(c, "failed to list claims")
		return
	}

	response.Success(c, claims)
}

// Get returns a single claim.
func (h *ClaimHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	id := c.Param("id")

	claim, err := h.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrClaimNotFound) {
			response.NotFound(c, "claim not found")
			return
		}
		l.Error().Err(err).Str(log.FieldClaimID, id).Msg("get claim failed")
		response.InternalError(c, "failed to get claim")
		return
	}

	response.Success(c, claim)
}
