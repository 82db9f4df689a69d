package client

// Roles used in chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSessionName is the name given to sessions created without one.
const DefaultSessionName = "New Chat"

// DefaultHistoryWindow is how many trailing messages are sent as context
// with each question (three question/answer pairs).
const DefaultHistoryWindow = 6

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	Token              string         `json:"token"`
	Role               int            `json:"role"`
	MustChangePassword bool           `json:"mustChangePassword"`
	Config             map[string]any `json:"config"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question    string           `json:"question"`
	ModuleID    *int             `json:"module_id"`
	Config      map[string]any   `json:"config"`
	ChatHistory []HistoryMessage `json:"chat_history"`

	// SessionID makes the backend persist both sides of the exchange.
	SessionID *int `json:"session_id,omitempty"`
}

// HistoryMessage is one message of a session's history.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Session is a server-side chat thread. Timestamps are passed through as the
// backend formats them.
type Session struct {
	ID        int    `json:"id"`
	Name      string `json:"session_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Module is a knowledge-base module questions can be scoped to.
type Module struct {
	ID          int    `json:"module_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TeamID      *int   `json:"team_id,omitempty"`
	TeamName    string `json:"team_name,omitempty"`
}

// Document is an uploaded knowledge-base file.
type Document struct {
	ID         int    `json:"document_id"`
	ModuleID   int    `json:"module_id"`
	ModuleName string `json:"module_name"`
	Title      string `json:"title"`
	FilePath   string `json:"file_path"`
	UploadedBy string `json:"uploaded_by"`
	UploadedAt string `json:"uploaded_at"`
	TeamID     *int   `json:"team_id,omitempty"`
}

// ModuleStats is what the backend has indexed for one module.
type ModuleStats struct {
	ModuleID        int `json:"module_id"`
	DocumentCount   int `json:"document_count"`
	TotalEmbeddings int `json:"total_embeddings"`
}

// envelope is the common {"success": ..., "error": ...} wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecentHistory returns the last n messages of history, or all of them when
// there are fewer. n <= 0 returns nil.
func RecentHistory(history []HistoryMessage, n int) []HistoryMessage {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
