package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/cenkalti/backoff/v4"
)

// Job states reported by the server.
const (
	JobCreated   = "CREATED"
	JobRunning   = "RUNNING"
	JobDone      = "DONE"
	JobFailed    = "FAILED"
	JobCancelled = "CANCELLED"
)

var errJobRunning = errors.New("job still running")

// Job is a snapshot of a server-side job.
type Job struct {
	Key         string
	Description string
	Status      string
	Progress    float64
	Dest        string
	Exception   string
}

type keyJSON struct {
	Name string `json:"name"`
}

type jobJSON struct {
	Key         keyJSON `json:"key"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Progress    float64 `json:"progress"`
	Dest        keyJSON `json:"dest"`
	Exception   string  `json:"exception"`
}

func (j jobJSON) job() *Job {
	return &Job{
		Key:         j.Key.Name,
		Description: j.Description,
		Status:      j.Status,
		Progress:    j.Progress,
		Dest:        j.Dest.Name,
		Exception:   j.Exception,
	}
}

type jobsResponse struct {
	Jobs []jobJSON `json:"jobs"`
}

// Job fetches the current state of a job.
func (c *Client) Job(ctx context.Context, key string) (*Job, error) {
	var resp jobsResponse
	if err := c.API(ctx, "GET /3/Jobs/"+url.PathEscape(key), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Jobs) == 0 {
		return nil, fmt.Errorf("job %s: %w", key, ErrNotFound)
	}
	return resp.Jobs[0].job(), nil
}

// WaitJob polls a job until it is done. Failed and cancelled jobs return a
// *JobError; a job still running when the polling policy stops returns
// ErrJobTimeout.
func (c *Client) WaitJob(ctx context.Context, key string) (*Job, error) {
	var done *Job
	check := func() error {
		job, err := c.Job(ctx, key)
		if err != nil {
			var serverErr *ServerError
			if errors.As(err, &serverErr) {
				return backoff.Permanent(err)
			}
			return err
		}

		switch job.Status {
		case JobDone:
			done = job
			return nil
		case JobFailed, JobCancelled:
			return backoff.Permanent(&JobError{Key: key, Status: job.Status, Exception: job.Exception})
		default:
			slog.Debug("Waiting for h2o job.", "job", key, "status", job.Status, "progress", job.Progress)
			return errJobRunning
		}
	}

	b := backoff.WithContext(c.newJobBackoff(), ctx)
	if err := backoff.Retry(check, b); err != nil {
		if errors.Is(err, errJobRunning) {
			return nil, fmt.Errorf("wait job %s: %w", key, ErrJobTimeout)
		}
		return nil, fmt.Errorf("wait job %s: %w", key, err)
	}
	return done, nil
}
