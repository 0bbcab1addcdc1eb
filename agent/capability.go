package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"vizchat/viz"
)

// CapabilityClass is the closed set of capability classes the router knows.
type CapabilityClass string

const (
	ClassData          CapabilityClass = "data"
	ClassVisualization CapabilityClass = "visualization"
	ClassStatistics    CapabilityClass = "statistics"
	ClassReport        CapabilityClass = "report"
)

// Capability is one externally implemented operation. Accepted declares the
// argument schema statically; it is read once at registration, never
// reflected at call time.
type Capability interface {
	tool.InvokableTool
	Accepted() []string
}

// OutcomeKind tags a capability outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeBusinessError
	OutcomeException
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBusinessError:
		return "business_error"
	case OutcomeException:
		return "exception"
	default:
		return "unknown"
	}
}

// Payload carries the class-specific success data of a capability result.
type Payload struct {
	Artifact   *Artifact              `json:"artifact,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Statistics *viz.DepthSummary      `json:"statistics,omitempty"`
	Reports    map[string]string      `json:"reports,omitempty"`
}

// Outcome is the tagged result of one capability invocation. Exceptions and
// business errors share control flow; only Diagnostic tells them apart.
type Outcome struct {
	Kind       OutcomeKind
	Message    string
	Payload    Payload
	Diagnostic string
}

// Success reports whether the outcome is a success.
func (o Outcome) Success() bool {
	return o.Kind == OutcomeSuccess
}

// Category returns the error-tracker category for a failed outcome.
func (o Outcome) Category() string {
	if o.Kind == OutcomeException {
		return "exception"
	}
	return "business"
}

// capResult is the uniform wire shape every capability returns from
// InvokableRun: status, message, and an optional class-specific payload.
type capResult struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message"`
	Artifact   *Artifact              `json:"artifact,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Statistics *viz.DepthSummary      `json:"statistics,omitempty"`
	Reports    map[string]string      `json:"reports,omitempty"`
	Diagnostic string                 `json:"diagnostic,omitempty"`
}

func (r *capResult) marshal() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","message":%q}`, err.Error())
	}
	return string(data)
}

func successResult(message string) *capResult {
	return &capResult{Status: "success", Message: message}
}

func errorResult(message, diagnostic string) *capResult {
	return &capResult{Status: "error", Message: message, Diagnostic: diagnostic}
}

// registration holds one capability plus its schema resolved at registration
// time.
type registration struct {
	capability Capability
	info       *schema.ToolInfo
	accepted   map[string]bool
}

// Registry maps capability names to registrations for one class.
type Registry struct {
	class   CapabilityClass
	names   []string
	entries map[string]*registration
	logger  func(string)
}

// NewRegistry registers the capabilities of one class, resolving each
// argument schema once.
func NewRegistry(ctx context.Context, class CapabilityClass, logger func(string), capabilities ...Capability) (*Registry, error) {
	r := &Registry{
		class:   class,
		entries: make(map[string]*registration),
		logger:  logger,
	}
	for _, c := range capabilities {
		info, err := c.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve info for %s capability: %v", class, err)
		}
		if _, dup := r.entries[info.Name]; dup {
			return nil, fmt.Errorf("duplicate capability name: %s", info.Name)
		}
		accepted := make(map[string]bool)
		for _, p := range c.Accepted() {
			accepted[p] = true
		}
		r.entries[info.Name] = &registration{capability: c, info: info, accepted: accepted}
		r.names = append(r.names, info.Name)
	}
	return r, nil
}

func (r *Registry) log(msg string) {
	if r.logger != nil {
		r.logger(msg)
	}
}

// Class returns the registry's capability class.
func (r *Registry) Class() CapabilityClass {
	return r.class
}

// Has reports whether the registry contains the named capability.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Accepts reports whether the named capability's declared schema contains
// the parameter.
func (r *Registry) Accepts(name, param string) bool {
	entry, ok := r.entries[name]
	if !ok {
		return false
	}
	return entry.accepted[param]
}

// Infos returns the tool infos in registration order, for model binding.
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.names))
	for _, name := range r.names {
		infos = append(infos, r.entries[name].info)
	}
	return infos
}

// Invoke runs the named capability, normalizing business errors, Go errors,
// and panics into the same tagged outcome shape. An unknown name yields a
// synthesized failure without invoking anything.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) (outcome Outcome) {
	entry, ok := r.entries[name]
	if !ok {
		r.log(fmt.Sprintf("[%s-NODE] Unknown capability: %s", r.class, name))
		return Outcome{
			Kind:    OutcomeBusinessError,
			Message: fmt.Sprintf("capability %q is not registered in the %s class", name, r.class),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log(fmt.Sprintf("[%s-NODE] Panic in %s: %v", r.class, name, rec))
			outcome = Outcome{
				Kind:       OutcomeException,
				Message:    fmt.Sprintf("capability %s failed unexpectedly", name),
				Diagnostic: fmt.Sprintf("panic: %v\n%s", rec, debug.Stack()),
			}
		}
	}()

	raw, err := entry.capability.InvokableRun(ctx, argsJSON)
	if err != nil {
		return Outcome{
			Kind:       OutcomeException,
			Message:    err.Error(),
			Diagnostic: fmt.Sprintf("capability %s raised: %v", name, err),
		}
	}

	var result capResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Outcome{
			Kind:       OutcomeException,
			Message:    fmt.Sprintf("capability %s returned an unreadable result", name),
			Diagnostic: fmt.Sprintf("unmarshal: %v; raw: %s", err, raw),
		}
	}

	if result.Status != "success" {
		return Outcome{
			Kind:       OutcomeBusinessError,
			Message:    result.Message,
			Diagnostic: result.Diagnostic,
		}
	}

	return Outcome{
		Kind:    OutcomeSuccess,
		Message: result.Message,
		Payload: Payload{
			Artifact:   result.Artifact,
			Parameters: result.Parameters,
			Statistics: result.Statistics,
			Reports:    result.Reports,
		},
	}
}

// Capabilities bundles one registry per class.
type Capabilities struct {
	Data          *Registry
	Visualization *Registry
	Statistics    *Registry
	Report        *Registry
}

// ClassOf finds the class owning the named capability.
func (c *Capabilities) ClassOf(name string) (CapabilityClass, bool) {
	for _, r := range c.registries() {
		if r.Has(name) {
			return r.class, true
		}
	}
	return "", false
}

// RegistryFor returns the registry of a class.
func (c *Capabilities) RegistryFor(class CapabilityClass) *Registry {
	switch class {
	case ClassData:
		return c.Data
	case ClassVisualization:
		return c.Visualization
	case ClassStatistics:
		return c.Statistics
	case ClassReport:
		return c.Report
	}
	return nil
}

// ToolInfos returns every capability's tool info for model binding.
func (c *Capabilities) ToolInfos() []*schema.ToolInfo {
	var infos []*schema.ToolInfo
	for _, r := range c.registries() {
		infos = append(infos, r.Infos()...)
	}
	return infos
}

func (c *Capabilities) registries() []*Registry {
	var out []*Registry
	for _, r := range []*Registry{c.Data, c.Visualization, c.Statistics, c.Report} {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
