package replicate

import "time"

// Status is the lifecycle state of a remote prediction.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether no further polling is needed.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

type predictionRequest struct {
	Input map[string]any `json:"input"`
}

type prediction struct {
	ID          string     `json:"id"`
	Model       string     `json:"model"`
	Version     string     `json:"version"`
	Status      Status     `json:"status"`
	Output      any        `json:"output"`
	Error       any        `json:"error"`
	Logs        string     `json:"logs"`
	CreatedAt   *time.Time `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	URLs        struct {
		Get    string `json:"get"`
		Cancel string `json:"cancel"`
	} `json:"urls"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}
