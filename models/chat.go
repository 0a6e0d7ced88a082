package models

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type Conversation struct {
	JsonModel
	PublicID      string        `gorm:"uniqueIndex" json:"conversation_id"`
	UserAccountID uint          `gorm:"index" json:"-"`
	Title         string        `json:"title"`
	Messages      []ChatMessage `json:"messages,omitempty"`
}

type ChatMessage struct {
	JsonModel
	ConversationID uint     `gorm:"index" json:"-"`
	Role           ChatRole `json:"role"`
	Content        string   `gorm:"type:text" json:"content"`
}
