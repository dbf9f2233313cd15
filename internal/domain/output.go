package domain

import "time"

// StoredOutput describes a media file persisted under the output directory.
type StoredOutput struct {
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Bytes     int64     `json:"bytes"`
	MIME      string    `json:"mime,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
