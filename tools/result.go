package tools

import (
	"encoding/json"
	"fmt"
)

// Status classifies a tool outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Result is the uniform envelope returned by every tool invocation, success
// or failure. The payload fields are tool-specific and omitted when empty.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`

	LocalPath  string `json:"local_path,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
	Model      string `json:"model,omitempty"`
	PublicURL  string `json:"public_url,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	Slug       string `json:"slug,omitempty"`
	URL        string `json:"url,omitempty"`
}

// Errorf builds an error envelope.
func Errorf(format string, args ...interface{}) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// JSON renders the envelope for feeding back into the conversation. Encoding
// a Result cannot fail; the fallback covers the impossible case anyway.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","message":%q}`, err.Error())
	}
	return string(data)
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}
