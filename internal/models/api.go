package models

import "encoding/json"

// APIMeta carries pagination details of a listing response.
type APIMeta struct {
	Total int `json:"total,omitempty"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// APIResponse is the envelope every backend endpoint responds with.
type APIResponse struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Meta    *APIMeta        `json:"meta,omitempty"`
}
