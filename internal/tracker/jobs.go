package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/jobs"
)

// RunJob executes a queued advisory job and stores its JSON result on the
// job. It has the jobs.JobHandler signature.
func (s *Service) RunJob(ctx context.Context, job *jobs.AdvisoryJob) error {
	log := s.log.With().Str("job_id", job.JobID).Str("job_type", string(job.Type)).Logger()

	var (
		result interface{}
		err    error
	)
	switch job.Type {
	case jobs.JobTypeAnalyzeFinances:
		result, err = s.RequestAnalysis(ctx, job.SavingsGoal)
	case jobs.JobTypeExtractReceipt:
		result, err = s.ScanReceipt(ctx, job.Image)
	default:
		return fmt.Errorf("RunJob: unexpected job type: %s", job.Type)
	}
	if err != nil {
		log.Warn().Err(err).Int("retry_count", job.RetryCount).Msg("Job failed")
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("RunJob: encode result: %w", err)
	}
	job.Result = data
	log.Info().Msg("Job completed")
	return nil
}

// Retryable reports whether a failed job may succeed on a later attempt.
func Retryable(err error) bool {
	return errors.Is(err, advisory.ErrAdvisoryUnavailable) || errors.Is(err, ErrBusy)
}

var _ jobs.JobHandler = (*Service)(nil).RunJob
