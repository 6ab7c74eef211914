package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shlior7/scenergy/internal/types"
	"github.com/shlior7/scenergy/pkg/api/v1/client"
)

// jobOutput represents the filtered output for a job in listings
type jobOutput struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Attempts int    `json:"attempts"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs  []jobOutput `json:"jobs"`
	Total int64       `json:"total"`
}

func init() {
	jobsCmd.AddCommand(enqueueJobCmd)
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(cancelJobCmd)
	jobsCmd.AddCommand(watchJobCmd)

	// Add flags
	enqueueJobCmd.Flags().String("type", "", "Job type to enqueue")
	enqueueJobCmd.Flags().String("payload", "", "Payload JSON for the job")
	enqueueJobCmd.Flags().String("payload-file", "", "Path to a file containing the payload JSON")
	enqueueJobCmd.Flags().Int("priority", 0, "Job priority, lower runs first")
	enqueueJobCmd.Flags().Int("max-attempts", 0, "Claim budget before a retryable failure becomes terminal")
	enqueueJobCmd.Flags().Duration("schedule-in", 0, "Delay before the job becomes eligible to run")
	enqueueJobCmd.Flags().String("flow-id", "", "Flow the job belongs to")
	_ = enqueueJobCmd.MarkFlagRequired("type")

	getJobCmd.Flags().StringP("id", "i", "", "Job ID to fetch")
	_ = getJobCmd.MarkFlagRequired("id")

	listJobsCmd.Flags().IntP("limit", "l", 0, "Limit the number of jobs returned")
	listJobsCmd.Flags().Int("offset", 0, "Number of jobs to skip")
	listJobsCmd.Flags().String("status", "", "Filter jobs by status")
	listJobsCmd.Flags().String("type", "", "Filter jobs by type")

	cancelJobCmd.Flags().StringP("id", "i", "", "Job ID to cancel")
	_ = cancelJobCmd.MarkFlagRequired("id")

	watchJobCmd.Flags().StringP("id", "i", "", "Job ID to watch")
	watchJobCmd.Flags().Duration("interval", 2*time.Second, "Poll interval")
	_ = watchJobCmd.MarkFlagRequired("id")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Enqueue and track generation jobs",
}

var enqueueJobCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Enqueue a new job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobType, _ := cmd.Flags().GetString("type")

		payload, err := readPayload(cmd)
		if err != nil {
			return err
		}

		req := types.EnqueueRequest{
			Type:    jobType,
			Payload: payload,
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetInt("priority")
			req.Priority = &priority
		}
		if cmd.Flags().Changed("max-attempts") {
			maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
			req.MaxAttempts = &maxAttempts
		}
		if cmd.Flags().Changed("schedule-in") {
			delay, _ := cmd.Flags().GetDuration("schedule-in")
			at := time.Now().UTC().Add(delay)
			req.ScheduledFor = &at
		}
		if flowID, _ := cmd.Flags().GetString("flow-id"); flowID != "" {
			req.FlowID = &flowID
		}

		response, err := apiClient.EnqueueJob(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error enqueueing job: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), response.JobID)
		return nil
	},
}

// readPayload loads the payload JSON from the --payload flag or the file
// named by --payload-file
func readPayload(cmd *cobra.Command) (json.RawMessage, error) {
	payload, _ := cmd.Flags().GetString("payload")
	payloadFile, _ := cmd.Flags().GetString("payload-file")

	switch {
	case payload != "" && payloadFile != "":
		return nil, fmt.Errorf("use either --payload or --payload-file, not both")
	case payload != "":
		return json.RawMessage(payload), nil
	case payloadFile != "":
		raw, err := os.ReadFile(payloadFile)
		if err != nil {
			return nil, fmt.Errorf("error reading payload file: %w", err)
		}
		return json.RawMessage(raw), nil
	default:
		return nil, fmt.Errorf("a payload is required, use --payload or --payload-file")
	}
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")

		job, err := apiClient.GetJob(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error fetching job: %w", err)
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
		return nil
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tenant's jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := &client.JobListOptions{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Offset, _ = cmd.Flags().GetInt("offset")
		opts.Status, _ = cmd.Flags().GetString("status")
		opts.Type, _ = cmd.Flags().GetString("type")

		response, err := apiClient.ListJobs(context.Background(), opts)
		if err != nil {
			return fmt.Errorf("error fetching jobs: %w", err)
		}

		// Filter the response to only include relevant fields
		output := jobListOutput{
			Jobs:  make([]jobOutput, len(response.Jobs)),
			Total: response.Pagination.Total,
		}
		for i, job := range response.Jobs {
			output.Jobs[i] = jobOutput{
				ID:       job.ID,
				Type:     string(job.Type),
				Status:   string(job.Status),
				Progress: job.Progress,
				Attempts: job.Attempts,
			}
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
		return nil
	},
}

var cancelJobCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a pending job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")

		if err := apiClient.CancelJob(context.Background(), jobID); err != nil {
			return fmt.Errorf("error cancelling job: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Job cancelled")
		return nil
	},
}

var watchJobCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll a job until it reaches a terminal state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")
		interval, _ := cmd.Flags().GetDuration("interval")

		for {
			job, err := apiClient.GetJob(context.Background(), jobID)
			if err != nil {
				return fmt.Errorf("error fetching job: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d%%  attempt %d/%d\n",
				job.ID, job.Status, job.Progress, job.Attempts, job.MaxAttempts)

			if job.Status.Terminal() {
				if job.Error != "" {
					return fmt.Errorf("job finished %s: %s", job.Status, job.Error)
				}
				return nil
			}

			time.Sleep(interval)
		}
	},
}

// GetJobsCmd returns the jobs command
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}
