package models

import "time"

// UserContext describes the page, action and error that triggered a resolver session.
type UserContext struct {
	Page         string      `json:"page"`
	Action       string      `json:"action"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Environment  Environment `json:"environment"`
}

// Environment identifies the client the failure was observed on.
type Environment struct {
	Browser string `json:"browser" yaml:"browser"`
	OS      string `json:"os" yaml:"os"`
	Version string `json:"version" yaml:"version"`
}

// HasError reports whether an error message was captured.
func (c UserContext) HasError() bool {
	return c.ErrorMessage != ""
}
