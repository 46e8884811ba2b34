package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"dayplan/internal/app/agent"
	"dayplan/internal/app/approval"
	"dayplan/internal/app/auth"
	"dayplan/internal/app/chat"
	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const authorizationHeader = "Authorization"

type Handler struct {
	RegisterUC auth.RegisterUseCase
	Tokens     auth.TokenIssuer
	ChatUC     chat.UseCase
	Approvals  approval.UseCase
	Vault      ports.CredentialVault
	Calendar   ports.CalendarGateway
	KPI        kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.POST("/auth/register", h.register)
	api.POST("/chat", h.chat)

	actions := api.Group("/actions")
	actions.GET("/pending", h.pendingActions)
	actions.GET("/:action_id", h.getAction)
	actions.POST("/:action_id/approve", h.approveAction)
	actions.POST("/:action_id/reject", h.rejectAction)

	api.GET("/calendar/events", h.calendarEvents)
	api.POST("/calendar/connect", h.connectCalendar)
	api.DELETE("/calendar/connect", h.disconnectCalendar)

	s.GET("/ops/kpi", h.kpi)
}

type registerRequest struct {
	Email string `json:"email"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type connectRequest struct {
	Credentials json.RawMessage `json:"credentials"`
}

func (h Handler) register(c context.Context, ctx *app.RequestContext) {
	var body registerRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.RegisterUC.Execute(c, auth.RegisterRequest{Email: body.Email})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) chat(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body chatRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ChatUC.Execute(c, chat.Request{UserID: userID, Message: body.Message})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) pendingActions(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	pending, err := h.Approvals.ListPending(c, userID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	items := make([]map[string]any, 0, len(pending))
	for _, a := range pending {
		items = append(items, pendingActionJSON(a))
	}
	ctx.JSON(consts.StatusOK, map[string]any{"pending_actions": items})
}

func (h Handler) getAction(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	a, err := h.Approvals.Get(c, userID, string(ctx.Param("action_id")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, pendingActionJSON(a))
}

func (h Handler) approveAction(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	result, err := h.Approvals.Approve(c, userID, string(ctx.Param("action_id")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"action_id": result.ActionID,
		"state":     string(action.StateApproved),
		"executed":  result.Executed,
		"event_id":  result.EventRef.EventID,
	})
}

func (h Handler) rejectAction(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	actionID := string(ctx.Param("action_id"))
	if err := h.Approvals.Reject(c, userID, actionID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"action_id": actionID,
		"state":     string(action.StateRejected),
	})
}

func (h Handler) calendarEvents(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	daysAhead := intQuery(ctx, "days_ahead", 7)
	daysBack := intQuery(ctx, "days_back", 0)
	now := time.Now().UTC()
	events, err := h.Calendar.Events(c, userID,
		now.AddDate(0, 0, -daysBack), now.AddDate(0, 0, daysAhead))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"events": events})
}

func (h Handler) connectCalendar(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body connectRequest
	if err := decodeJSON(ctx, &body); err != nil || len(body.Credentials) == 0 {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_credentials", "credentials payload is required")
		return
	}
	if err := h.Vault.Put(c, userID, ports.Credentials{Raw: body.Credentials}); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"connected": true})
}

func (h Handler) disconnectCalendar(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := h.Vault.Clear(c, userID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"connected": false})
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

var ErrMissingBearerToken = errors.New("missing bearer token")

func (h Handler) requireUser(ctx *app.RequestContext) (string, error) {
	header := strings.TrimSpace(string(ctx.GetHeader(authorizationHeader)))
	if header == "" {
		return "", ErrMissingBearerToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" || token == header {
		return "", ErrMissingBearerToken
	}
	return h.Tokens.Verify(token)
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func intQuery(ctx *app.RequestContext, key string, fallback int) int {
	raw := string(ctx.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func pendingActionJSON(a action.PendingAction) map[string]any {
	out := map[string]any{
		"action_id":   a.ActionID,
		"kind":        string(a.Kind),
		"description": a.Description,
		"state":       string(a.State),
		"payload":     a.Payload,
		"created_at":  a.CreatedAt.Format(time.RFC3339),
		"expires_at":  a.ExpiresAt.Format(time.RFC3339),
	}
	if a.ResolvedAt != nil {
		out["resolved_at"] = a.ResolvedAt.Format(time.RFC3339)
	}
	return out
}

func writeError(ctx *app.RequestContext, err error) {
	var execErr *approval.ExecutionError
	switch {
	case errors.Is(err, ErrMissingBearerToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "missing_bearer_token", err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, action.ErrInvalidPayload):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_action_payload", err.Error())
	case errors.Is(err, approval.ErrExpired):
		writeErrorBody(ctx, consts.StatusConflict, "action_expired", "the action expired before it was resolved")
	case errors.Is(err, approval.ErrAlreadyResolved):
		writeErrorBody(ctx, consts.StatusConflict, "action_already_resolved", err.Error())
	case errors.As(err, &execErr):
		writeExecutionFailure(ctx, execErr)
	case errors.Is(err, approval.ErrInvalidRequest),
		errors.Is(err, agent.ErrInvalidRequest),
		errors.Is(err, chat.ErrInvalidRequest),
		errors.Is(err, auth.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrAuthExpired):
		writeErrorBody(ctx, consts.StatusConflict, "calendar_auth_expired", "calendar authorization expired, re-link the calendar")
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", "not found")
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

// writeExecutionFailure reports an approved action whose provider write
// failed: the approval stands, and the reason tells the client whether
// re-linking or a manual retry is the fix.
func writeExecutionFailure(ctx *app.RequestContext, execErr *approval.ExecutionError) {
	message := "the action was approved but executing it failed; retry manually"
	if execErr.Reason == approval.FailureAuthExpired {
		message = "the action was approved but the calendar authorization expired; re-link the calendar and retry"
	}
	ctx.JSON(consts.StatusBadGateway, map[string]any{
		"error": map[string]any{
			"code":    "execution_failed",
			"message": message,
			"details": map[string]string{
				"reason": string(execErr.Reason),
				"state":  string(action.StateApproved),
			},
		},
	})
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
