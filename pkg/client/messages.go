package client

import (
	"errors"
	"net/http"
	"strings"
)

// User-facing messages for each failure class.
const (
	MsgNetwork            = "Unable to reach the server. Check your connection and try again."
	MsgInvalidCredentials = "Invalid email or password."
	MsgNotFound           = "The requested item was not found."
	MsgRateLimited        = "Too many requests. Please wait a moment and try again."
	MsgClientFallback     = "The request could not be completed."
	MsgServer             = "The server encountered an error. Please try again later."
)

// UserMessage maps err to a message suitable for display. It never exposes
// transport error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return MsgClientFallback
	}

	switch status := apiErr.Status; {
	case status == 0:
		return MsgNetwork
	case status == http.StatusBadRequest, status == http.StatusUnauthorized:
		return MsgInvalidCredentials
	case status == http.StatusNotFound:
		return MsgNotFound
	case status == http.StatusTooManyRequests:
		return MsgRateLimited
	case status >= 500:
		return MsgServer
	default:
		if msg := strings.TrimSpace(apiErr.Message); msg != "" && msg != http.StatusText(status) {
			return msg
		}
		return MsgClientFallback
	}
}
