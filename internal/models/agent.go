package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Agent holds the persisted configuration of one generative agent:
// which model it runs on and the instruction it is primed with.
// One row per logical agent name, lazily created on first use.
type Agent struct {
	ID                uuid.UUID `db:"id"`
	Name              string    `db:"name"`
	Description       string    `db:"description"`
	SystemInstruction string    `db:"system_instruction"`
	Model             string    `db:"model"`
	ThinkingBudget    int       `db:"thinking_budget"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ConversationTurn is one append-only entry of the per (agent, user)
// conversation log. Content stores the opaque structured document that
// is replayed verbatim as model input. Seq is assigned by the database
// on insert and defines the replay order; timestamps alone cannot break
// ties between turns appended within the same instant.
type ConversationTurn struct {
	ID        uuid.UUID       `db:"id"`
	AgentID   uuid.UUID       `db:"agent_id"`
	UserID    uuid.UUID       `db:"user_id"`
	Role      Role            `db:"role"`
	Content   json.RawMessage `db:"content"`
	Seq       int64           `db:"seq"`
	CreatedAt time.Time       `db:"created_at"`
}

// TurnContent is the document stored in ConversationTurn.Content.
type TurnContent struct {
	Parts []TurnPart `json:"parts"`
}

type TurnPart struct {
	Text string `json:"text"`
}

// NewTurnContent wraps plain text into the stored content document.
func NewTurnContent(text string) json.RawMessage {
	raw, _ := json.Marshal(TurnContent{Parts: []TurnPart{{Text: text}}})
	return raw
}

// Text flattens the content document back into plain text.
func (t *ConversationTurn) Text() string {
	var content TurnContent
	if err := json.Unmarshal(t.Content, &content); err != nil {
		return ""
	}
	var out string
	for _, part := range content.Parts {
		out += part.Text
	}
	return out
}
