package agent

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// RouterState is one node of the planning state machine.
type RouterState string

const (
	StateModel         RouterState = "model"
	StateData          RouterState = "data_capability"
	StateVisualization RouterState = "visualization_capability"
	StateStatistics    RouterState = "statistics_capability"
	StateReport        RouterState = "report_capability"
	StateEnd           RouterState = "end"
)

// FailureBreakerThreshold is the number of consecutive capability failures
// that forces a turn to end. Fixed, not per-session: it bounds worst-case
// latency and model spend.
const FailureBreakerThreshold = 3

// Router decides the next state after a model turn or a capability run.
type Router struct {
	caps   *Capabilities
	logger func(string)
}

// NewRouter creates a router over the given capabilities.
func NewRouter(caps *Capabilities, logger func(string)) *Router {
	return &Router{caps: caps, logger: logger}
}

func (r *Router) log(msg string) {
	if r.logger != nil {
		r.logger(msg)
	}
}

// AfterModel routes a model reply. A reply with no capability request ends
// the turn; otherwise the first request (and only the first) is classified.
// An unrecognized capability name ends the turn with a warning, never a
// crash.
func (r *Router) AfterModel(msg *schema.Message) (RouterState, *schema.ToolCall) {
	if msg == nil || len(msg.ToolCalls) == 0 {
		return StateEnd, nil
	}
	call := msg.ToolCalls[0]
	if len(msg.ToolCalls) > 1 {
		r.log(fmt.Sprintf("[ROUTER] Model requested %d capabilities, honoring only %s", len(msg.ToolCalls), call.Function.Name))
	}

	class, ok := r.caps.ClassOf(call.Function.Name)
	if !ok {
		r.log(fmt.Sprintf("[ROUTER] WARNING: unrecognized capability %q, ending turn", call.Function.Name))
		return StateEnd, nil
	}

	state := classState(class)
	r.log(fmt.Sprintf("[ROUTER] %s -> %s", call.Function.Name, state))
	return state, &call
}

// AfterCapability routes after a capability ran: the breaker forces end at
// the threshold regardless of the last outcome, otherwise control returns to
// the model.
func (r *Router) AfterCapability(st *ConversationState) RouterState {
	if st.ConsecutiveFailures >= FailureBreakerThreshold {
		r.log(fmt.Sprintf("[ROUTER] Circuit breaker tripped after %d consecutive failures", st.ConsecutiveFailures))
		return StateEnd
	}
	return StateModel
}

func classState(class CapabilityClass) RouterState {
	switch class {
	case ClassData:
		return StateData
	case ClassVisualization:
		return StateVisualization
	case ClassStatistics:
		return StateStatistics
	case ClassReport:
		return StateReport
	}
	return StateEnd
}

func stateClass(state RouterState) CapabilityClass {
	switch state {
	case StateData:
		return ClassData
	case StateVisualization:
		return ClassVisualization
	case StateStatistics:
		return ClassStatistics
	case StateReport:
		return ClassReport
	}
	return ""
}
