package agent

import "dayplan/internal/app/ports"

type Request struct {
	UserID  string
	Message string
	// History is the recent conversation, oldest first, excluding the
	// current message.
	History []ports.ConversationMessage
}

type Response struct {
	Handler          string   `json:"handler"`
	Message          string   `json:"message"`
	Suggested        []string `json:"suggested_actions,omitempty"`
	ProposedActionID string   `json:"proposed_action_id,omitempty"`
	RequiresApproval bool     `json:"requires_approval"`
}
