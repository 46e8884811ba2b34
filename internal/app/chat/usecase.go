package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"dayplan/internal/app/agent"
	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"
)

var ErrInvalidRequest = errors.New("invalid chat request")

const defaultHistoryLimit = 20

type RouterService interface {
	Route(ctx context.Context, req agent.Request) (agent.Response, error)
}

type PendingLister interface {
	ListPending(ctx context.Context, ownerID string) ([]action.PendingAction, error)
}

// UseCase runs one conversational turn: persist the user message, route
// it, persist the reply, and attach whatever still awaits approval.
type UseCase struct {
	Router        RouterService
	Conversations ports.ConversationRepository
	Approvals     PendingLister
	HistoryLimit  int
}

type Request struct {
	UserID  string
	Message string
}

type PendingSummary struct {
	ActionID    string `json:"action_id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	ExpiresAt   string `json:"expires_at"`
}

type Response struct {
	Message          string           `json:"message"`
	Handler          string           `json:"handler"`
	Suggested        []string         `json:"suggested_actions,omitempty"`
	PendingActions   []PendingSummary `json:"pending_actions,omitempty"`
	RequiresApproval bool             `json:"requires_approval"`
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Message = strings.TrimSpace(req.Message)
	if req.UserID == "" || req.Message == "" {
		return Response{}, ErrInvalidRequest
	}

	limit := u.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history, err := u.Conversations.Recent(ctx, req.UserID, limit)
	if err != nil {
		return Response{}, err
	}
	if err := u.Conversations.Append(ctx, req.UserID, "user", req.Message); err != nil {
		return Response{}, err
	}

	routed, err := u.Router.Route(ctx, agent.Request{
		UserID:  req.UserID,
		Message: req.Message,
		History: history,
	})
	if err != nil {
		return Response{}, err
	}
	if err := u.Conversations.Append(ctx, req.UserID, "assistant", routed.Message); err != nil {
		return Response{}, err
	}

	pending, err := u.Approvals.ListPending(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}
	summaries := make([]PendingSummary, 0, len(pending))
	for _, a := range pending {
		summaries = append(summaries, PendingSummary{
			ActionID:    a.ActionID,
			Kind:        string(a.Kind),
			Description: a.Description,
			ExpiresAt:   a.ExpiresAt.Format(time.RFC3339),
		})
	}
	if len(summaries) == 0 {
		summaries = nil
	}

	return Response{
		Message:          routed.Message,
		Handler:          routed.Handler,
		Suggested:        routed.Suggested,
		PendingActions:   summaries,
		RequiresApproval: len(summaries) > 0,
	}, nil
}
