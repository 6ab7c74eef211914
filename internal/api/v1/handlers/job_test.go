package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/types"
)

const imageGenerationBody = `{
	"type": "image_generation",
	"payload": {
		"prompt": "studio shot on a white cyclorama",
		"products": [{"product_id": 1}],
		"aspect_ratio": "1:1",
		"quality": "standard",
		"variant_count": 2
	}
}`

const syncAllProductsBody = `{
	"type": "sync_all_products",
	"payload": {"connection_id": "conn-1"}
}`

// enqueueJob posts the given body and returns the assigned job id
func (s *HandlerTestSuite) enqueueJob(body string) string {
	resp := s.doRequest("POST", "/api/v1/jobs", body)
	s.Require().Equal(201, resp.StatusCode)

	var data types.EnqueueResponse
	env := s.decodeData(resp, &data)
	s.Require().Equal(SuccessSlug, env.Slug)
	s.Require().NotEmpty(data.JobID)
	return data.JobID
}

func (s *HandlerTestSuite) TestEnqueueJob() {
	jobID := s.enqueueJob(imageGenerationBody)

	job, err := s.jobRepo.GetForTenant(s.ctx, testTenantID, jobID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusPending, job.Status)
	s.Equal(models.JobTypeImageGeneration, job.Type)
	s.Equal(models.DefaultJobPriority, job.Priority)
	s.Equal(models.DefaultJobMaxAttempts, job.MaxAttempts)
	s.Equal(0, job.Attempts)
	s.WithinDuration(time.Now().UTC(), job.ScheduledFor, 5*time.Second)
}

func (s *HandlerTestSuite) TestEnqueueJobWithOptions() {
	scheduledFor := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	body := fmt.Sprintf(`{
		"type": "sync_all_products",
		"payload": {"connection_id": "conn-1"},
		"priority": 10,
		"max_attempts": 5,
		"flow_id": "flow-42",
		"scheduled_for": %q
	}`, scheduledFor.Format(time.RFC3339))

	jobID := s.enqueueJob(body)

	job, err := s.jobRepo.GetForTenant(s.ctx, testTenantID, jobID)
	s.Require().NoError(err)
	s.Equal(10, job.Priority)
	s.Equal(5, job.MaxAttempts)
	s.Require().NotNil(job.FlowID)
	s.Equal("flow-42", *job.FlowID)
	s.WithinDuration(scheduledFor, job.ScheduledFor, time.Second)
}

func (s *HandlerTestSuite) TestEnqueueJobInvalidPayload() {
	body := `{
		"type": "image_generation",
		"payload": {
			"products": [{"product_id": 1}],
			"aspect_ratio": "1:1",
			"quality": "standard",
			"variant_count": 2
		}
	}`
	resp := s.doRequest("POST", "/api/v1/jobs", body)
	s.Equal(400, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(InvalidInputSlug, env.Slug)
	s.Contains(env.Error, "prompt")

	// Validation failed before the insert, so nothing was stored
	var list types.ListJobsResponse
	s.decodeData(s.doRequest("GET", "/api/v1/jobs", ""), &list)
	s.Empty(list.Jobs)
	s.Zero(list.Pagination.Total)
}

func (s *HandlerTestSuite) TestEnqueueJobUnknownType() {
	resp := s.doRequest("POST", "/api/v1/jobs", `{"type": "hologram_generation", "payload": {}}`)
	s.Equal(400, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(InvalidInputSlug, env.Slug)
	s.Contains(env.Error, "invalid job type")
}

func (s *HandlerTestSuite) TestEnqueueJobMalformedBody() {
	resp := s.doRequest("POST", "/api/v1/jobs", `{"type": "image_generation"`)
	s.Equal(400, resp.StatusCode)
	s.Equal(InvalidInputSlug, s.decodeResponse(resp).Slug)
}

func (s *HandlerTestSuite) TestGetJob() {
	jobID := s.enqueueJob(imageGenerationBody)

	resp := s.doRequest("GET", "/api/v1/jobs/"+jobID, "")
	s.Equal(200, resp.StatusCode)

	var status types.JobResponse
	env := s.decodeData(resp, &status)
	s.Equal(SuccessSlug, env.Slug)
	s.Equal(jobID, status.ID)
	s.Equal(models.JobTypeImageGeneration, status.Type)
	s.Equal(models.JobStatusPending, status.Status)
	s.Equal(0, status.Attempts)
	s.Equal(models.DefaultJobMaxAttempts, status.MaxAttempts)
	s.Nil(status.StartedAt)
	s.Nil(status.CompletedAt)
}

func (s *HandlerTestSuite) TestGetJobNotFound() {
	resp := s.doRequest("GET", "/api/v1/jobs/no-such-job", "")
	s.Equal(404, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(NotFoundSlug, env.Slug)
	s.Equal("job not found", env.Error)
}

func (s *HandlerTestSuite) TestGetJobWrongTenant() {
	jobID := s.enqueueJob(imageGenerationBody)

	resp := s.doRequestAs("GET", "/api/v1/jobs/"+jobID, "", "tenant-b")
	s.Equal(404, resp.StatusCode)
	s.Equal(NotFoundSlug, s.decodeResponse(resp).Slug)
}

func (s *HandlerTestSuite) TestListJobs() {
	s.enqueueJob(imageGenerationBody)
	s.enqueueJob(imageGenerationBody)
	syncID := s.enqueueJob(syncAllProductsBody)

	resp := s.doRequest("GET", "/api/v1/jobs", "")
	s.Equal(200, resp.StatusCode)

	var list types.ListJobsResponse
	s.decodeData(resp, &list)
	s.Len(list.Jobs, 3)
	s.EqualValues(3, list.Pagination.Total)
	s.Equal(models.DefaultLimit, list.Pagination.Limit)

	// Filter by type
	s.decodeData(s.doRequest("GET", "/api/v1/jobs?type=sync_all_products", ""), &list)
	s.Require().Len(list.Jobs, 1)
	s.Equal(syncID, list.Jobs[0].ID)
	s.EqualValues(1, list.Pagination.Total)

	// Filter by status once a worker claims a job
	claimed, err := s.jobRepo.Claim(s.ctx, "worker-1")
	s.Require().NoError(err)
	s.Require().NotNil(claimed)

	s.decodeData(s.doRequest("GET", "/api/v1/jobs?status=processing", ""), &list)
	s.Require().Len(list.Jobs, 1)
	s.Equal(claimed.ID, list.Jobs[0].ID)

	// Pagination trims the page but reports the full total
	s.decodeData(s.doRequest("GET", "/api/v1/jobs?limit=2&offset=0", ""), &list)
	s.Len(list.Jobs, 2)
	s.EqualValues(3, list.Pagination.Total)
	s.Equal(2, list.Pagination.Limit)
}

func (s *HandlerTestSuite) TestListJobsInvalidFilters() {
	resp := s.doRequest("GET", "/api/v1/jobs?status=bogus", "")
	s.Equal(400, resp.StatusCode)
	env := s.decodeResponse(resp)
	s.Equal(InvalidInputSlug, env.Slug)
	s.Equal("invalid job status", env.Error)

	resp = s.doRequest("GET", "/api/v1/jobs?type=bogus", "")
	s.Equal(400, resp.StatusCode)
	s.Equal("invalid job type", s.decodeResponse(resp).Error)
}

func (s *HandlerTestSuite) TestCancelJob() {
	jobID := s.enqueueJob(imageGenerationBody)

	resp := s.doRequest("POST", "/api/v1/jobs/"+jobID+"/cancel", "")
	s.Equal(200, resp.StatusCode)
	s.Equal(SuccessSlug, s.decodeResponse(resp).Slug)

	var status types.JobResponse
	s.decodeData(s.doRequest("GET", "/api/v1/jobs/"+jobID, ""), &status)
	s.Equal(models.JobStatusCancelled, status.Status)
	s.NotNil(status.CompletedAt)
}

func (s *HandlerTestSuite) TestCancelJobNotFound() {
	resp := s.doRequest("POST", "/api/v1/jobs/no-such-job/cancel", "")
	s.Equal(404, resp.StatusCode)
	s.Equal(NotFoundSlug, s.decodeResponse(resp).Slug)
}

func (s *HandlerTestSuite) TestCancelJobAlreadyClaimed() {
	jobID := s.enqueueJob(imageGenerationBody)

	claimed, err := s.jobRepo.Claim(s.ctx, "worker-1")
	s.Require().NoError(err)
	s.Require().NotNil(claimed)
	s.Require().Equal(jobID, claimed.ID)

	resp := s.doRequest("POST", "/api/v1/jobs/"+jobID+"/cancel", "")
	s.Equal(409, resp.StatusCode)

	env := s.decodeResponse(resp)
	s.Equal(ConflictSlug, env.Slug)
	s.Contains(env.Error, "not cancellable")

	// The worker holding the lease keeps the job
	job, err := s.jobRepo.GetForTenant(s.ctx, testTenantID, jobID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusProcessing, job.Status)
}

func (s *HandlerTestSuite) TestMissingTenantHeader() {
	resp := s.doRequestAs("GET", "/api/v1/jobs", "", "")
	s.Equal(401, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var payload map[string]string
	s.Require().NoError(json.Unmarshal(body, &payload))
	s.Equal("X-Tenant-Id header is required", payload["error"])
}
