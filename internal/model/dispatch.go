package model

import "time"

// DispatchRun records the outcome of one dispatch cycle
type DispatchRun struct {
	ID        string `json:"id"`
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Cancelled int    `json:"cancelled"`
	Failed    int    `json:"failed"`
	// Error is set when the cycle aborted before writing statuses.
	Error string `json:"error,omitempty"`
	// Metadata carries per-cycle details such as the template subject.
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
