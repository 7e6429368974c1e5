// Package completion talks to remote chat-completion services.
package completion

import (
	"context"
	"errors"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NoResponseText is shown to users when the service produced nothing usable.
const NoResponseText = "No response generated."

var (
	ErrServiceUnavailable = errors.New("completion service unavailable")
	ErrNoChoices          = errors.New("completion service returned no choices")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one completion call. Messages are sent in order; the system
// message must come first.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type unavailableClient struct {
	err error
}

// Unavailable returns a Client that fails every call with err. It lets the
// server start when a backend could not be constructed.
func Unavailable(err error) Client {
	return unavailableClient{err: err}
}

func (u unavailableClient) Complete(context.Context, Request) (string, error) {
	return "", errors.Join(ErrServiceUnavailable, u.err)
}

// FailureClass labels a completion failure for logs.
type FailureClass string

const (
	FailureAuth      FailureClass = "auth"
	FailureQuota     FailureClass = "quota"
	FailureRate      FailureClass = "rate"
	FailureTimeout   FailureClass = "timeout"
	FailureNoChoices FailureClass = "no_choices"
	FailureTransient FailureClass = "transient"
	FailurePermanent FailureClass = "permanent"
)

func Classify(err error) FailureClass {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, ErrNoChoices) {
		return FailureNoChoices
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "status 401"), strings.Contains(e, "status 403"),
		strings.Contains(e, "api key"), strings.Contains(e, "unauthorized"):
		return FailureAuth
	case strings.Contains(e, "quota"), strings.Contains(e, "insufficient_quota"), strings.Contains(e, "credit"):
		return FailureQuota
	case strings.Contains(e, "status 429"), strings.Contains(e, "rate limit"):
		return FailureRate
	case strings.Contains(e, "timeout"), strings.Contains(e, "deadline"):
		return FailureTimeout
	case strings.Contains(e, "status 5"), strings.Contains(e, "connection refused"),
		strings.Contains(e, "temporarily"), strings.Contains(e, "connection reset"):
		return FailureTransient
	default:
		return FailurePermanent
	}
}
