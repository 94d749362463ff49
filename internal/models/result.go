package models

// AskResponse is the answer returned for an ask request.
type AskResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}
