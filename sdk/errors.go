package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrJobTimeout is returned when a job is still running after the
	// polling policy gave up.
	ErrJobTimeout = errors.New("job did not finish in time")
	// ErrCloudUnhealthy is returned when the server reports an unhealthy cloud.
	ErrCloudUnhealthy = errors.New("h2o cloud is not healthy")
	// ErrUnknownColumn is returned when a frame has no column with the given name.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotFound is returned when the server has no object with the given key.
	ErrNotFound = errors.New("not found")
)

// ServerError is an error response from the server.
type ServerError struct {
	Status        int
	Message       string
	ExceptionType string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.ExceptionType != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Status, e.ExceptionType, msg)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, msg)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type serverErrorJSON struct {
	Msg           string `json:"msg"`
	ExceptionMsg  string `json:"exception_msg"`
	ExceptionType string `json:"exception_type"`
	HTTPStatus    int    `json:"http_status"`
}

func decodeServerError(status int, body []byte) *ServerError {
	e := &ServerError{Status: status}
	var payload serverErrorJSON
	if err := json.Unmarshal(body, &payload); err != nil {
		e.Message = strings.TrimSpace(string(body))
		return e
	}
	e.Message = payload.ExceptionMsg
	if e.Message == "" {
		e.Message = payload.Msg
	}
	e.ExceptionType = payload.ExceptionType
	return e
}

// JobError is returned when a server-side job fails or is cancelled.
type JobError struct {
	Key       string
	Status    string
	Exception string
}

func (e *JobError) Error() string {
	if e.Exception == "" {
		return fmt.Sprintf("job %s %s", e.Key, strings.ToLower(e.Status))
	}
	return fmt.Sprintf("job %s %s: %s", e.Key, strings.ToLower(e.Status), e.Exception)
}

// ValidationMessage is one parameter check reported by a model builder.
type ValidationMessage struct {
	Type    string `json:"message_type"`
	Field   string `json:"field_name"`
	Message string `json:"message"`
}

// ValidationError is returned when a model builder rejects its parameters.
type ValidationError struct {
	Algo     string
	Messages []ValidationMessage
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		if m.Type != "ERRR" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", m.Field, m.Message))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s parameters rejected", e.Algo)
	}
	return fmt.Sprintf("%s parameters rejected: %s", e.Algo, strings.Join(parts, "; "))
}
