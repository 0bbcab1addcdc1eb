package agent

import (
	"fmt"
	"strings"
)

// buildPreamble renders the fixed instruction prefix sent before the
// conversation history on every model call.
func buildPreamble(caps *Capabilities) string {
	var sb strings.Builder
	sb.WriteString("You are VizChat, an assistant for exploring ensemble datasets.\n")
	sb.WriteString("You satisfy requests by invoking the capabilities below and explaining the results.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Invoke at most ONE capability at a time; wait for its result before deciding the next step.\n")
	sb.WriteString("2. Load or generate data before plotting or computing statistics on it.\n")
	sb.WriteString("3. Pass dataset references exactly as returned by the data capabilities.\n")
	sb.WriteString("4. When no capability is needed, answer in plain text.\n\n")

	sb.WriteString("Capabilities:\n")
	for _, r := range caps.registries() {
		for _, info := range r.Infos() {
			sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", info.Name, r.Class(), firstSentence(info.Desc)))
		}
	}
	return sb.String()
}

func firstSentence(s string) string {
	if idx := strings.Index(s, ". "); idx >= 0 {
		return s[:idx+1]
	}
	return s
}
