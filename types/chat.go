package types

// Message represents a single message in a model conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one completed (question, answer) exchange in a session.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Answer is the query engine's result: the model response verbatim plus the
// retrieved segments that supported it.
type Answer struct {
	Content string    `json:"content"`
	Sources []Segment `json:"sources"`
}

type AskRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type AskResponse struct {
	SessionID string    `json:"session_id"`
	Answer    string    `json:"answer"`
	Sources   []Segment `json:"sources"`
}

type ResetRequest struct {
	SessionID string `json:"session_id"`
}
