package agent

import (
	"context"
	"errors"
	"strings"

	"dayplan/internal/app/ports"
)

var (
	ErrInvalidRequest = errors.New("invalid route request")
	ErrNoHandler      = errors.New("no handler claimed the message")
)

// Handler is one domain-specific responder. Claims must be a pure
// function of the message text so routing stays deterministic.
type Handler interface {
	Name() string
	Claims(message string) bool
	Handle(ctx context.Context, req Request) (Response, error)
}

// Router dispatches each message to exactly one handler: the first in
// declaration order whose predicate claims it. A fallback handler whose
// predicate always claims should terminate the list.
type Router struct {
	Handlers []Handler
	Metrics  ports.AssistantMetrics
}

func (r Router) Route(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Message) == "" {
		return Response{}, ErrInvalidRequest
	}
	for _, h := range r.Handlers {
		if !h.Claims(req.Message) {
			continue
		}
		resp, err := h.Handle(ctx, req)
		if err != nil {
			return Response{}, err
		}
		resp.Handler = h.Name()
		if r.Metrics != nil {
			r.Metrics.RecordRouted(h.Name())
		}
		return resp, nil
	}
	return Response{}, ErrNoHandler
}

func containsAny(message string, words []string) bool {
	lower := strings.ToLower(message)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
