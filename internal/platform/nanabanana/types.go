package nanabanana

import "fmt"

// Status is a remote task status reported by the provider's status endpoint.
type Status string

// The provider's exhaustive status variants.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus maps a raw provider status string to a Status.
// Anything outside the known variants is a protocol error, not a task
// failure.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unexpected task status %q in provider response", raw)
}

// TaskState is the mapped result of one status poll.
type TaskState struct {
	Status       Status
	ResultURL    string
	ErrorMessage string
}

// Terminal reports whether the task will make no further progress.
func (s TaskState) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// Fixed generation parameters sent with every creation request. These are
// not caller-configurable.
type generationRequest struct {
	Prompt        string   `json:"prompt"`
	OutputFormat  string   `json:"output_format"`
	ImageSize     string   `json:"image_size"`
	EnablePro     bool     `json:"enable_pro"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	Steps         int      `json:"steps"`
	GuidanceScale float64  `json:"guidance_scale"`
	IsPublic      bool     `json:"is_public"`
	ImageURLs     []string `json:"image_urls,omitempty"`
}

func newGenerationRequest(prompt string, imageURLs []string) generationRequest {
	return generationRequest{
		Prompt:        prompt,
		OutputFormat:  "png",
		ImageSize:     "auto",
		EnablePro:     false,
		Width:         1024,
		Height:        1024,
		Steps:         20,
		GuidanceScale: 7.5,
		IsPublic:      false,
		ImageURLs:     imageURLs,
	}
}
