package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// defaultPriority is given to tools registered without one.
const defaultPriority = 50

// Registry holds the tools exposed to one dialogue. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]*Tool
	byCategory map[ToolCategory][]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		byCategory: make(map[ToolCategory][]*Tool),
	}
}

// Register adds tool. Names are unique within a registry.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tools[tool.Name]; dup {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	if tool.Priority == 0 {
		tool.Priority = defaultPriority
	}
	r.tools[tool.Name] = tool
	r.byCategory[tool.Category] = append(r.byCategory[tool.Category], tool)

	logging.ResearchDebug("tool registered: %s (category=%s priority=%d)", tool.Name, tool.Category, tool.Priority)
	return nil
}

// MustRegister is Register for statically known tools; it panics on error.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("register tool %s: %v", tool.Name, err))
	}
}

// Get returns the named tool or nil.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// GetByCategory returns the tools of category, highest priority first.
func (r *Registry) GetByCategory(category ToolCategory) []*Tool {
	r.mu.RLock()
	out := append([]*Tool(nil), r.byCategory[category]...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs the named tool. A missing required argument fails before the
// tool runs. The returned ToolResult is non-nil whenever the tool exists.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	start := time.Now()
	res := &ToolResult{ToolName: name}
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			res.Error = fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
			return res, res.Error
		}
	}

	res.Result, res.Error = tool.Execute(ctx, args)
	res.DurationMs = time.Since(start).Milliseconds()
	logging.ResearchDebug("tool %s finished in %dms (ok=%v)", name, res.DurationMs, res.Error == nil)
	return res, res.Error
}

// Definitions returns the engine-facing definitions of the given categories,
// or of every tool when none are given, ordered by priority then name.
func (r *Registry) Definitions(categories ...ToolCategory) []types.ToolDefinition {
	var selected []*Tool
	if len(categories) == 0 {
		r.mu.RLock()
		for _, t := range r.tools {
			selected = append(selected, t)
		}
		r.mu.RUnlock()
	} else {
		for _, c := range categories {
			selected = append(selected, r.GetByCategory(c)...)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Priority != selected[j].Priority {
			return selected[i].Priority > selected[j].Priority
		}
		return selected[i].Name < selected[j].Name
	})

	defs := make([]types.ToolDefinition, 0, len(selected))
	for _, t := range selected {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Definition converts t into a JSON Schema tool definition.
func (t *Tool) Definition() types.ToolDefinition {
	props := make(map[string]interface{}, len(t.Schema.Properties))
	for name, p := range t.Schema.Properties {
		prop := map[string]interface{}{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Items != nil {
			prop["items"] = map[string]interface{}{"type": p.Items.Type}
		}
		props[name] = prop
	}
	required := t.Schema.Required
	if required == nil {
		required = []string{}
	}
	return types.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}
