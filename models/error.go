package models

// ErrorMessageResponse returns the error response that we use in our handlers
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the details of the error message and the specific error
type MessageError struct {
	Message string
	Error   string
}

// HealthCheckResponse returns the health check response duh
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
