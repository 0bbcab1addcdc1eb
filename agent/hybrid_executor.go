package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// reportVariants are the keys the report-retrieval path requires.
var reportVariants = []string{"inline", "quick", "detailed"}

// hybridAliases maps a logical command parameter to the argument names it
// may target. "colormap" legitimately targets two different argument names
// on different capabilities; every alias the target schema accepts is set.
var hybridAliases = map[string][]string{
	"colormap": {"colormap", "band_colormap"},
}

func aliasesFor(param string) []string {
	if aliases, ok := hybridAliases[param]; ok {
		return aliases
	}
	return []string{param}
}

// HybridExecutor is the fast, model-free path: re-issue the last
// visualization call with one parameter changed, or retrieve an already
// generated report variant.
type HybridExecutor struct {
	caps   *Capabilities
	logger func(string)
}

// NewHybridExecutor creates a hybrid executor over the given capabilities.
func NewHybridExecutor(caps *Capabilities, logger func(string)) *HybridExecutor {
	return &HybridExecutor{caps: caps, logger: logger}
}

func (h *HybridExecutor) log(msg string) {
	if h.logger != nil {
		h.logger(msg)
	}
}

// Execute attempts the hybrid path. The boolean reports acceptance; false
// means the caller must fall back to the full planning loop. A declined
// attempt never mutates session state.
func (h *HybridExecutor) Execute(ctx context.Context, cmd *Command, st *ConversationState) (string, bool) {
	if cmd == nil {
		return "", false
	}
	if cmd.Parameter == "report_type" {
		return h.retrieveReport(cmd, st)
	}
	return h.updateParameter(ctx, cmd, st)
}

// retrieveReport looks up an existing report variant. It never re-invokes
// the report capability; regenerating a report to change its presentation
// would waste a model round.
func (h *HybridExecutor) retrieveReport(cmd *Command, st *ConversationState) (string, bool) {
	variant, _ := cmd.Value.(string)
	if st.Reports == nil {
		h.log("[HYBRID] Report retrieval declined: no reports generated yet")
		return "", false
	}
	for _, required := range reportVariants {
		if _, ok := st.Reports[required]; !ok {
			h.log(fmt.Sprintf("[HYBRID] Report retrieval declined: variant %q missing", required))
			return "", false
		}
	}
	text, ok := st.Reports[variant]
	if !ok {
		h.log(fmt.Sprintf("[HYBRID] Report retrieval declined: unknown variant %q", variant))
		return "", false
	}
	h.log(fmt.Sprintf("[HYBRID] Retrieved %s report", variant))
	return text, true
}

// updateParameter re-invokes the last visualization capability with one
// argument mutated.
func (h *HybridExecutor) updateParameter(ctx context.Context, cmd *Command, st *ConversationState) (string, bool) {
	prev := st.LastVizInvocation
	if prev == nil {
		h.log("[HYBRID] Declined: no prior visualization invocation")
		return "", false
	}

	reg := h.caps.Visualization
	if reg == nil || !reg.Has(prev.Capability) {
		h.log(fmt.Sprintf("[HYBRID] Declined: unknown capability %q", prev.Capability))
		return "", false
	}

	var targets []string
	for _, alias := range aliasesFor(cmd.Parameter) {
		if reg.Accepts(prev.Capability, alias) {
			targets = append(targets, alias)
		}
	}
	if len(targets) == 0 {
		h.log(fmt.Sprintf("[HYBRID] Declined: %s does not accept %q", prev.Capability, cmd.Parameter))
		return "", false
	}

	args := CloneArgs(prev.Args)
	for _, target := range targets {
		args[target] = cmd.Value
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		h.log(fmt.Sprintf("[HYBRID] Declined: cannot encode arguments: %v", err))
		return "", false
	}

	outcome := reg.Invoke(ctx, prev.Capability, string(argsJSON))
	if !outcome.Success() {
		h.log(fmt.Sprintf("[HYBRID] Declined: %s failed: %s", prev.Capability, outcome.Message))
		return "", false
	}

	st.LastVizInvocation = &CapabilityInvocation{
		Capability: prev.Capability,
		Args:       args,
		DataRef:    prev.DataRef,
	}
	st.AddArtifact(outcome.Payload.Artifact)

	h.log(fmt.Sprintf("[HYBRID] Updated %s on %s", cmd.Parameter, prev.Capability))
	reply := outcome.Message
	if reply == "" {
		reply = fmt.Sprintf("Updated %s.", cmd.Parameter)
	}
	return reply, true
}
