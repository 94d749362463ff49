package models

import (
	"errors"
	"strings"
)

// ErrEmptyQuestion is returned when a question is empty or only whitespace.
var ErrEmptyQuestion = errors.New("question cannot be empty")

// AskRequest is the body of an ask request.
type AskRequest struct {
	Question string `json:"question"`
}

// Validate trims the question in place and rejects blank questions.
func (q *AskRequest) Validate() error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return ErrEmptyQuestion
	}
	return nil
}
