package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func jobServer(t *testing.T, statuses ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/Jobs/$job_1" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"msg":"no such job"}`))
			return
		}
		n := int(polls.Add(1)) - 1
		status := statuses[min(n, len(statuses)-1)]
		fmt.Fprintf(w, `{"jobs":[{"key":{"name":"$job_1"},"status":%q,"progress":0.5,"dest":{"name":"gbm_model"},"exception":"boom"}]}`, status)
	}))
	t.Cleanup(srv.Close)
	return srv, &polls
}

func TestWaitJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		statuses  []string
		wantPolls int32
		wantDest  string
		check     func(t *testing.T, err error)
	}{
		{
			name:      "done after running",
			statuses:  []string{JobCreated, JobRunning, JobDone},
			wantPolls: 3,
			wantDest:  "gbm_model",
		},
		{
			name:      "failed job",
			statuses:  []string{JobRunning, JobFailed},
			wantPolls: 2,
			check: func(t *testing.T, err error) {
				var jobErr *JobError
				if !errors.As(err, &jobErr) {
					t.Fatalf("WaitJob() error = %v, want *JobError", err)
				}
				if jobErr.Status != JobFailed || jobErr.Exception != "boom" {
					t.Fatalf("JobError = %+v", jobErr)
				}
			},
		},
		{
			name:      "cancelled job",
			statuses:  []string{JobCancelled},
			wantPolls: 1,
			check: func(t *testing.T, err error) {
				var jobErr *JobError
				if !errors.As(err, &jobErr) || jobErr.Status != JobCancelled {
					t.Fatalf("WaitJob() error = %v, want cancelled *JobError", err)
				}
			},
		},
		{
			name:      "still running when polling stops",
			statuses:  []string{JobRunning},
			wantPolls: 4,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrJobTimeout) {
					t.Fatalf("WaitJob() error = %v, want ErrJobTimeout", err)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv, polls := jobServer(t, tc.statuses...)
			c, err := NewClient(srv.URL, WithJobBackoff(zeroBackoff(3)))
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}

			job, err := c.WaitJob(context.Background(), "$job_1")
			if tc.check != nil {
				tc.check(t, err)
			} else {
				if err != nil {
					t.Fatalf("WaitJob() error = %v", err)
				}
				if job.Dest != tc.wantDest {
					t.Fatalf("Dest = %q, want %q", job.Dest, tc.wantDest)
				}
			}
			if got := polls.Load(); got != tc.wantPolls {
				t.Fatalf("polls = %d, want %d", got, tc.wantPolls)
			}
		})
	}
}

func TestWaitJobServerErrorIsPermanent(t *testing.T) {
	t.Parallel()

	srv, _ := jobServer(t, JobDone)
	c, err := NewClient(srv.URL, WithJobBackoff(zeroBackoff(3)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = c.WaitJob(context.Background(), "$job_unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("WaitJob() error = %v, want ErrNotFound", err)
	}
}
