package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shlior7/scenergy/internal/db/models"
)

func intPtr(v int) *int {
	return &v
}

func TestEnqueueRequestValidate(t *testing.T) {
	tests := []struct {
		name     string
		req      EnqueueRequest
		wantType models.JobType
		wantErr  bool
		errMsg   string
	}{
		{
			name: "valid image generation",
			req: EnqueueRequest{
				Type:    "image_generation",
				Payload: json.RawMessage(`{"prompt":"mug on marble","products":[{"product_id":12}],"aspect_ratio":"1:1","quality":"high","variant_count":1}`),
			},
			wantType: models.JobTypeImageGeneration,
		},
		{
			name: "valid sync with options",
			req: EnqueueRequest{
				Type:        "sync_all_products",
				Payload:     json.RawMessage(`{"connection_id":"conn-1"}`),
				MaxAttempts: intPtr(5),
			},
			wantType: models.JobTypeSyncAllProducts,
		},
		{
			name: "unknown type",
			req: EnqueueRequest{
				Type:    "hologram_generation",
				Payload: json.RawMessage(`{}`),
			},
			wantErr: true,
			errMsg:  "invalid job type",
		},
		{
			name: "payload does not match type",
			req: EnqueueRequest{
				Type:    "image_edit",
				Payload: json.RawMessage(`{"connection_id":"conn-1"}`),
			},
			wantErr: true,
			errMsg:  "does not match type",
		},
		{
			name: "missing payload",
			req: EnqueueRequest{
				Type: "video_generation",
			},
			wantErr: true,
		},
		{
			name: "zero max attempts",
			req: EnqueueRequest{
				Type:        "sync_product",
				Payload:     json.RawMessage(`{"connection_id":"conn-1","product_ids":["1001"]}`),
				MaxAttempts: intPtr(0),
			},
			wantErr: true,
			errMsg:  "max_attempts must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobType, err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error message = %v, want to contain %v", err, tt.errMsg)
				}
				return
			}
			if jobType != tt.wantType {
				t.Errorf("Validate() type = %v, want %v", jobType, tt.wantType)
			}
		})
	}
}

func TestNewJobResponse(t *testing.T) {
	flowID := "flow-42"
	job := &models.Job{
		ID:          "job-1",
		TenantID:    "tenant-a",
		FlowID:      &flowID,
		Type:        models.JobTypeImageEdit,
		Status:      models.JobStatusFailed,
		Progress:    60,
		Error:       "provider rejected the instruction",
		Attempts:    3,
		MaxAttempts: 3,
		Priority:    20,
	}

	resp := NewJobResponse(job)
	if resp.ID != "job-1" || resp.Type != models.JobTypeImageEdit || resp.Status != models.JobStatusFailed {
		t.Errorf("NewJobResponse() identity fields wrong: %+v", resp)
	}
	if resp.Error != job.Error || resp.Attempts != 3 || resp.Priority != 20 {
		t.Errorf("NewJobResponse() outcome fields wrong: %+v", resp)
	}
	if resp.FlowID == nil || *resp.FlowID != "flow-42" {
		t.Errorf("NewJobResponse() flow id = %v, want flow-42", resp.FlowID)
	}
}

func TestJobResultMarshal(t *testing.T) {
	result := &JobResult{
		Assets: []AssetRef{
			{ID: "job-1-0", URL: "https://cdn.example.com/a.png", Kind: models.AssetKindImage},
		},
		DurationMS: 1500,
	}

	raw, err := result.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(raw), "job-1-0") || !strings.Contains(string(raw), "1500") {
		t.Errorf("Marshal() output missing fields: %s", raw)
	}
	if strings.Contains(string(raw), "synced_count") {
		t.Errorf("Marshal() should omit zero counters: %s", raw)
	}
}
