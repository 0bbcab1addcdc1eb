package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// maxModelRounds guards against a model that keeps chaining successful
// capabilities without ever answering. The breaker bounds failures; this
// bounds successes.
const maxModelRounds = 16

// Session owns one conversation: it tries the hybrid path first and falls
// back to the model-driven planning loop. Execution is single-threaded and
// synchronous; the state is never shared across sessions.
type Session struct {
	ID string

	chatModel model.ChatModel
	caps      *Capabilities
	parser    *CommandParser
	hybrid    *HybridExecutor
	router    *Router
	tracker   *ErrorTracker
	state     *ConversationState
	preamble  string
	logger    func(string)
}

// NewSession wires a session. Tools are bound to the model once here.
func NewSession(chatModel model.ChatModel, caps *Capabilities, state *ConversationState, tracker *ErrorTracker, logger func(string)) (*Session, error) {
	if state == nil {
		state = NewConversationState()
	}
	if tracker == nil {
		tracker = NewErrorTracker(logger)
	}

	if err := chatModel.BindTools(caps.ToolInfos()); err != nil {
		return nil, fmt.Errorf("failed to bind capabilities: %v", err)
	}

	return &Session{
		ID:        uuid.NewString(),
		chatModel: chatModel,
		caps:      caps,
		parser:    NewCommandParser(logger),
		hybrid:    NewHybridExecutor(caps, logger),
		router:    NewRouter(caps, logger),
		tracker:   tracker,
		state:     state,
		preamble:  buildPreamble(caps),
		logger:    logger,
	}, nil
}

func (s *Session) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}

// State exposes the session state for presentation and tests.
func (s *Session) State() *ConversationState {
	return s.state
}

// Tracker exposes the error tracker for presentation and tests.
func (s *Session) Tracker() *ErrorTracker {
	return s.tracker
}

// Send handles one user utterance: hybrid path first, then the full
// planning loop to a terminal state.
func (s *Session) Send(ctx context.Context, utterance string) (string, error) {
	if cmd := s.parser.Parse(utterance); cmd != nil {
		if reply, ok := s.hybrid.Execute(ctx, cmd, s.state); ok {
			s.state.AppendHistory(schema.UserMessage(utterance))
			s.state.AppendHistory(schema.AssistantMessage(reply, nil))
			return reply, nil
		}
		s.log("[SESSION] Hybrid path declined, falling back to planning loop")
	}

	s.state.AppendHistory(schema.UserMessage(utterance))
	return s.runPlanningLoop(ctx)
}

// runPlanningLoop drives model -> capability -> model until the model
// answers in text, the breaker trips, or the round guard fires.
func (s *Session) runPlanningLoop(ctx context.Context) (string, error) {
	var lastFailureMessage string

	for round := 0; round < maxModelRounds; round++ {
		input := append([]*schema.Message{schema.SystemMessage(s.preamble)}, s.state.History...)
		reply, err := s.chatModel.Generate(ctx, input)
		if err != nil {
			return "", fmt.Errorf("model generate failed: %w", err)
		}
		s.state.AppendHistory(reply)

		next, call := s.router.AfterModel(reply)
		if next == StateEnd {
			if reply.Content != "" {
				return reply.Content, nil
			}
			return "I could not route that request to a known capability.", nil
		}

		outcome := s.runCapability(ctx, stateClass(next), *call)
		if !outcome.Success() {
			lastFailureMessage = userFacingFailure(call.Function.Name, outcome)
		}

		if s.router.AfterCapability(s.state) == StateEnd {
			return lastFailureMessage, nil
		}
	}

	s.log(fmt.Sprintf("[SESSION] Planning loop exceeded %d rounds, ending turn", maxModelRounds))
	return "The request needed too many steps; stopping here.", nil
}

// runCapability executes one capability node: invoke, append the result to
// history, fold the payload into state, and keep the failure bookkeeping.
func (s *Session) runCapability(ctx context.Context, class CapabilityClass, call schema.ToolCall) Outcome {
	name := call.Function.Name
	reg := s.caps.RegistryFor(class)
	outcome := reg.Invoke(ctx, name, call.Function.Arguments)

	s.state.AppendHistory(&schema.Message{
		Role:       schema.Tool,
		ToolCallID: call.ID,
		Content:    toolResultContent(outcome),
	})

	if outcome.Success() {
		s.foldSuccess(class, name, call.Function.Arguments, outcome)
		s.state.ConsecutiveFailures = 0
		s.tracker.Reconcile(s.state, name, true)
		return outcome
	}

	s.state.ConsecutiveFailures++
	record := s.tracker.Record(
		name,
		outcome.Category(),
		outcome.Message,
		outcome.Diagnostic,
		userFacingFailure(name, outcome),
		s.contextSnapshot(),
	)
	s.state.PendingFailure = &FailureLink{Capability: name, ErrorID: record.ID}
	return outcome
}

// foldSuccess merges a successful payload into state. Only the
// visualization class ever produces LastVizInvocation.
func (s *Session) foldSuccess(class CapabilityClass, name, argsJSON string, outcome Outcome) {
	s.state.AddArtifact(outcome.Payload.Artifact)

	switch class {
	case ClassData:
		if outcome.Payload.Artifact != nil {
			s.state.CurrentData = outcome.Payload.Artifact
		}
	case ClassVisualization:
		args := decodeArgs(argsJSON)
		s.state.LastVizInvocation = &CapabilityInvocation{
			Capability: name,
			Args:       args,
			DataRef:    stringArg(args, "data_ref"),
		}
	case ClassStatistics:
		if outcome.Payload.Statistics != nil {
			s.state.Statistics = outcome.Payload.Statistics
		}
	case ClassReport:
		if outcome.Payload.Reports != nil {
			s.state.Reports = outcome.Payload.Reports
		}
	}
}

func (s *Session) contextSnapshot() map[string]string {
	snapshot := map[string]string{
		"consecutive_failures": fmt.Sprintf("%d", s.state.ConsecutiveFailures),
	}
	if s.state.CurrentData != nil {
		snapshot["current_data"] = s.state.CurrentData.ID
	}
	if s.state.LastVizInvocation != nil {
		snapshot["last_visualization"] = s.state.LastVizInvocation.Capability
	}
	return snapshot
}

func toolResultContent(outcome Outcome) string {
	result := map[string]interface{}{"message": outcome.Message}
	if outcome.Success() {
		result["status"] = "success"
	} else {
		result["status"] = "error"
	}
	data, err := json.Marshal(result)
	if err != nil {
		return outcome.Message
	}
	return string(data)
}

func userFacingFailure(capability string, outcome Outcome) string {
	if outcome.Message != "" {
		return fmt.Sprintf("%s failed: %s", capability, outcome.Message)
	}
	return fmt.Sprintf("%s failed.", capability)
}

func decodeArgs(argsJSON string) map[string]interface{} {
	args := make(map[string]interface{})
	if argsJSON != "" {
		// A malformed argument payload already failed inside the capability;
		// an empty map is fine here.
		_ = json.Unmarshal([]byte(argsJSON), &args)
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
