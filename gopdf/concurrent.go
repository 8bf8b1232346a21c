package gopdf

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of conversions a batch runs at once
const DefaultConcurrency = 4

// Job describes one conversion in a batch
type Job struct {
	Name    string         `mapstructure:"name"`
	Source  string         `mapstructure:"source"`
	Preset  string         `mapstructure:"preset"`
	Options map[string]any `mapstructure:"options"`
	Output  string         `mapstructure:"output"`
	Tags    []string       `mapstructure:"tags"`
}

// StoreFunc persists the result of a finished job
type StoreFunc func(ctx context.Context, job Job, result *Result) error

// BatchConvert converts jobs concurrently, each on its own Request, with at
// most limit conversions in flight. Individual failures never stop the batch.
func (c *Client) BatchConvert(ctx context.Context, jobs []Job, limit int, store StoreFunc) BatchResult {
	result := BatchResult{
		Requested: len(jobs),
	}

	if len(jobs) == 0 {
		return result
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	successChan := make(chan string, len(jobs))
	errorChan := make(chan JobError, len(jobs))

	for _, job := range jobs {
		g.Go(func() error {
			res, err := c.NewRequest().Apply(job.Options).Convert(ctx, job.Source)
			if err == nil && store != nil {
				err = store(ctx, job, res)
			}
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("job", job.Name).
					Msg("Conversion job failed")
				errorChan <- JobError{Job: job, Err: err}
				return nil
			}

			c.logger.Info().
				Str("job", job.Name).
				Int("bytes", res.Len()).
				Bool("hosted", res.IsHosted()).
				Msg("Conversion job finished")
			successChan <- job.Name
			return nil
		})
	}

	g.Wait()
	close(successChan)
	close(errorChan)

	for name := range successChan {
		result.Successful = append(result.Successful, name)
	}
	for err := range errorChan {
		result.Failed = append(result.Failed, err)
	}

	return result
}

// BatchResult contains the results of a batch conversion
type BatchResult struct {
	Requested  int
	Successful []string
	Failed     []JobError
}

// JobError contains information about a failed job
type JobError struct {
	Job Job
	Err error
}

// Error implements the error interface
func (e JobError) Error() string {
	return fmt.Sprintf("job %s (%s) failed: %v", e.Job.Name, e.Job.Source, e.Err)
}

// Unwrap returns the conversion or storage error
func (e JobError) Unwrap() error {
	return e.Err
}
