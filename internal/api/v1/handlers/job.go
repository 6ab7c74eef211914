package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/shlior7/scenergy/internal/api/middleware"
	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/queue"
	"github.com/shlior7/scenergy/internal/types"
)

// JobHandler handles HTTP requests for job operations
type JobHandler struct {
	queue *queue.Queue
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(q *queue.Queue) *JobHandler {
	return &JobHandler{queue: q}
}

// EnqueueJob handles the request to enqueue a new job. The payload is
// validated against the declared type before any row is written, so a 400
// here means nothing was stored.
func (h *JobHandler) EnqueueJob(c *fiber.Ctx) error {
	var req types.EnqueueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput(err.Error()))
	}

	jobType, err := req.Validate()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput(err.Error()))
	}

	jobID, err := h.queue.Enqueue(c.Context(), queue.EnqueueParams{
		TenantID:     middleware.TenantID(c),
		Type:         jobType,
		Payload:      req.Payload,
		Priority:     req.Priority,
		ScheduledFor: req.ScheduledFor,
		FlowID:       req.FlowID,
		MaxAttempts:  req.MaxAttempts,
	})
	if err != nil {
		if errors.Is(err, queue.ErrInvalidPayload) {
			return c.Status(fiber.StatusBadRequest).
				JSON(errInvalidInput(err.Error()))
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.Status(fiber.StatusCreated).
		JSON(Response{
			Slug: SuccessSlug,
			Data: types.EnqueueResponse{JobID: jobID},
		})
}

// GetJob handles the request to get a job's status
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput("invalid job id"))
	}

	status, err := h.queue.GetStatus(c.Context(), middleware.TenantID(c), jobID)
	if err != nil {
		if errors.Is(err, repos.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(errNotFound("job not found"))
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.JSON(Response{
		Slug: SuccessSlug,
		Data: status,
	})
}

// ListJobs handles the request to list the tenant's jobs
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	opts := &models.ListOptions{
		Limit:  c.QueryInt("limit", models.DefaultLimit),
		Offset: c.QueryInt("offset", 0),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseJobStatus(statusStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(errInvalidInput("invalid job status"))
		}
		opts.Status = &status
	}
	if typeStr := c.Query("type"); typeStr != "" {
		jobType, err := models.ParseJobType(typeStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(errInvalidInput("invalid job type"))
		}
		opts.Type = &jobType
	}

	jobs, total, err := h.queue.ListJobs(c.Context(), middleware.TenantID(c), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(errServer(err.Error()))
	}

	return c.JSON(Response{
		Slug: SuccessSlug,
		Data: types.ListJobsResponse{
			Jobs: jobs,
			Pagination: types.PaginationResponse{
				Total:  total,
				Limit:  opts.Limit,
				Offset: opts.Offset,
			},
		},
	})
}

// CancelJob handles the request to cancel a job. Only jobs still waiting in
// pending can be cancelled; anything later returns a conflict.
func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if jobID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(errInvalidInput("invalid job id"))
	}

	err := h.queue.Cancel(c.Context(), middleware.TenantID(c), jobID)
	if err != nil {
		switch {
		case errors.Is(err, repos.ErrJobNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(errNotFound("job not found"))
		case errors.Is(err, repos.ErrJobNotCancellable):
			return c.Status(fiber.StatusConflict).
				JSON(errConflict(err.Error()))
		default:
			return c.Status(fiber.StatusInternalServerError).
				JSON(errServer(err.Error()))
		}
	}

	return c.Status(fiber.StatusOK).
		JSON(Response{
			Slug: SuccessSlug,
			Data: "Job cancelled successfully",
		})
}
