package session

// Status of a conversation. Transitions only leave active; completed and
// invalid_action are terminal.
type Status string

const (
	StatusActive        Status = "active"
	StatusCompleted     Status = "completed"
	StatusInvalidAction Status = "invalid_action"
)

// Message roles used in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation holds the mutable state of one benchmark conversation.
// History is append-only and strictly ordered by turn. A Conversation is
// owned by a single goroutine; turns are strictly sequential.
type Conversation struct {
	status      Status
	history     []Message
	finalAnswer string
	hasAnswer   bool
}

func New() *Conversation {
	return &Conversation{status: StatusActive}
}

// Restore rebuilds a conversation from persisted state, for post-hoc
// grading of stored runs.
func Restore(status Status, history []Message, finalAnswer string) *Conversation {
	return &Conversation{
		status:      status,
		history:     append([]Message(nil), history...),
		finalAnswer: finalAnswer,
		hasAnswer:   status == StatusCompleted,
	}
}

func (c *Conversation) Status() Status {
	return c.status
}

// Done reports whether the conversation has reached a terminal status.
// Safe to call repeatedly; terminal states absorb.
func (c *Conversation) Done() bool {
	return c.status != StatusActive
}

// History returns a copy of the ordered message history.
func (c *Conversation) History() []Message {
	return append([]Message(nil), c.history...)
}

// FinalAnswer returns the raw answer text captured by FINISH. It is set
// if and only if the status is completed.
func (c *Conversation) FinalAnswer() (string, bool) {
	return c.finalAnswer, c.hasAnswer
}

// AppendUser appends a user message (the initial prompt or an observation)
// while the conversation is active.
func (c *Conversation) AppendUser(content string) {
	if c.Done() {
		return
	}
	c.history = append(c.history, Message{Role: RoleUser, Content: content})
}
