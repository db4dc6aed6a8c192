package models

// ChatRole identifies the author of a chat turn.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of an advisor conversation.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatReply is the advisor's answer.
type ChatReply struct {
	Reply string `json:"reply"`
}

// Recommendation is the advisor's product shortlist for a risk appetite.
type Recommendation struct {
	Summary  string    `json:"summary"`
	Products []Product `json:"products"`
}
