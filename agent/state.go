package agent

import (
	"github.com/cloudwego/eino/schema"

	"vizchat/viz"
)

// Artifact is a handle to a dataset, chart, or exported file created this
// session.
type Artifact struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"` // "ensemble", "chart", "pdf"
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Members int    `json:"members,omitempty"`
	Points  int    `json:"points,omitempty"`
}

// CapabilityInvocation records the most recent visualization call so the
// hybrid path can re-issue it with one parameter changed.
type CapabilityInvocation struct {
	Capability string
	Args       map[string]interface{}
	DataRef    string
}

// FailureLink ties the most recent capability failure to its error record
// until the same capability succeeds again.
type FailureLink struct {
	Capability string
	ErrorID    int
}

// ConversationState is the single mutable record owned by one session.
// History is append-only and preserves conversational order exactly.
type ConversationState struct {
	History             []*schema.Message
	CurrentData         *Artifact
	LastVizInvocation   *CapabilityInvocation
	Artifacts           []*Artifact
	ConsecutiveFailures int
	PendingFailure      *FailureLink
	Statistics          *viz.DepthSummary
	Reports             map[string]string
}

// NewConversationState creates an empty session state.
func NewConversationState() *ConversationState {
	return &ConversationState{}
}

// AppendHistory appends one turn. Order must never be rearranged.
func (s *ConversationState) AppendHistory(msg *schema.Message) {
	s.History = append(s.History, msg)
}

// AddArtifact registers an artifact created this session.
func (s *ConversationState) AddArtifact(a *Artifact) {
	if a == nil {
		return
	}
	s.Artifacts = append(s.Artifacts, a)
}

// CloneArgs copies an argument map so a mutation never aliases the previous
// invocation's argument set.
func CloneArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
