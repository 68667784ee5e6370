// Package session implements the turn-processing state machine: command
// classification, GET/POST execution, and conversation status tracking.
package session

import "strings"

// Action is the typed form of one agent utterance. Exactly one Action is
// derived per turn; actions are never persisted beyond the turn that
// produced them.
type Action interface {
	isAction()
}

// GetAction reads backend state through the FHIR server.
type GetAction struct {
	URL string
}

// PostAction carries a write request. The payload is validated and
// acknowledged only; no request is sent (see Executor.Post).
type PostAction struct {
	URL     string
	RawBody string
}

// FinishAction ends the conversation with the agent's answers. RawAnswer is
// expected to be JSON-array-loadable text but is not validated here;
// validity is deferred to grading.
type FinishAction struct {
	RawAnswer string
}

// InvalidAction is anything that matches none of the three command forms.
// It terminates the conversation.
type InvalidAction struct {
	Content string
}

func (GetAction) isAction()     {}
func (PostAction) isAction()    {}
func (FinishAction) isAction()  {}
func (InvalidAction) isAction() {}

const finishPrefix = "FINISH("

// Classify parses one agent utterance into an Action. Matching is purely
// prefix-based and case-sensitive, checked in FINISH, GET, POST order.
func Classify(content string) Action {
	content = StripFences(content)

	switch {
	case strings.HasPrefix(content, finishPrefix):
		// Drop the prefix and the assumed trailing ')'. Brackets are not
		// validated; a missing close paren clips the last answer character
		// instead, matching the observed source behavior.
		raw := content[len(finishPrefix):]
		if raw != "" {
			raw = raw[:len(raw)-1]
		}
		return FinishAction{RawAnswer: raw}
	case strings.HasPrefix(content, "GET"):
		return GetAction{URL: strings.TrimSpace(content[len("GET"):])}
	case strings.HasPrefix(content, "POST"):
		first, rest, _ := strings.Cut(content, "\n")
		return PostAction{
			URL:     strings.TrimSpace(strings.TrimPrefix(first, "POST")),
			RawBody: rest,
		}
	default:
		return InvalidAction{Content: content}
	}
}

// StripFences removes code-fence markers that models sometimes wrap
// commands in, then trims surrounding whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```tool_code", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
