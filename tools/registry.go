package tools

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/voocel/copilot/schema"
)

// Prefix marks a callable as a tool.
const Prefix = "tool_"

type entry struct {
	tool       Tool
	descriptor Descriptor
	validator  *gojsonschema.Schema
}

// Registry maps tool names to their descriptor and executable.
// It is built once and never mutated, so it is shared across goroutines without locking.
type Registry struct {
	tools map[string]*entry
	order []string
}

// NewRegistry constructs a registry from an ordered list of tools.
// Descriptors and argument validators are computed here once.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools: make(map[string]*entry, len(tools)),
		order: make([]string, 0, len(tools)),
	}
	for _, tool := range tools {
		if tool == nil {
			return nil, fmt.Errorf("register: nil tool")
		}
		descriptor := tool.Descriptor()
		name := descriptor.Name()
		if name == "" || name == Prefix || !strings.HasPrefix(name, Prefix) {
			return nil, fmt.Errorf("register %q: %w: must start with %q", name, schema.ErrInvalidToolName, Prefix)
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("register %q: %w", name, schema.ErrDuplicateTool)
		}
		validator, err := descriptor.validator()
		if err != nil {
			return nil, fmt.Errorf("register %q: compile argument schema: %w", name, err)
		}
		r.tools[name] = &entry{tool: tool, descriptor: descriptor, validator: validator}
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get retrieves a tool
func (r *Registry) Get(name string) (Tool, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return nil, false
	}
	return e.tool, true
}

// Descriptor returns the cached descriptor of a tool.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return Descriptor{}, false
	}
	return e.descriptor, true
}

// List returns all tools in registration order
func (r *Registry) List() []Tool {
	if r == nil {
		return nil
	}
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].tool)
	}
	return tools
}

// Names returns registered tool names in registration order
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Has reports whether a tool exists
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// Count returns the number of tools
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Definitions returns the function-calling schema of every tool in registration order.
func (r *Registry) Definitions() []schema.ToolDefinition {
	if r == nil {
		return nil
	}
	defs := make([]schema.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].descriptor.Definition())
	}
	return defs
}

func (r *Registry) lookup(name string) (*entry, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.tools[name]
	return e, ok
}
