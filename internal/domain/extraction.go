package domain

import "time"

// ExtractionProvider selects which LLM backend performs an extraction.
type ExtractionProvider string

const (
	ProviderGemini ExtractionProvider = "gemini"
	ProviderOpenAI ExtractionProvider = "openai"
)

// ValidProvider reports whether the value names a supported provider.
func ValidProvider(p ExtractionProvider) bool {
	return p == ProviderGemini || p == ProviderOpenAI
}

// ExtractionJobState enumerates the lifecycle of an asynchronous extraction.
type ExtractionJobState string

const (
	JobPending  ExtractionJobState = "PENDING"
	JobRunning  ExtractionJobState = "RUNNING"
	JobComplete ExtractionJobState = "COMPLETE"
	JobFailed   ExtractionJobState = "FAILED"
)

// ExtractedTask is one task recovered from a document by the extraction
// pipeline. Only the title is mandatory; everything else defaults.
type ExtractedTask struct {
	Title                   string        `json:"title"`
	Explanation             string        `json:"explanation,omitempty"`
	PriorityLevel           PriorityLevel `json:"priorityLevel,omitempty"`
	Tags                    []string      `json:"tags,omitempty"`
	EstimatedCompletionDate string        `json:"estimatedCompletionDate,omitempty"`
}

// ExtractionJob tracks one asynchronous document-to-tasks extraction.
// Jobs are serialized to JSON and kept in Redis with a TTL, so status
// survives across server instances.
type ExtractionJob struct {
	ID           string             `json:"id"`
	Provider     ExtractionProvider `json:"provider"`
	State        ExtractionJobState `json:"state"`
	DocumentName string             `json:"documentName,omitempty"`
	Tasks        []ExtractedTask    `json:"tasks,omitempty"`
	Error        string             `json:"error,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}
