package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ToolDefinition is the function-calling schema sent to the model:
// {type:"function", function:{name, description, parameters}}.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes one callable function.
type FunctionDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the object schema of a function's arguments.
// Properties keep the declaration order of the parameters when serialized.
type Parameters struct {
	Type       string                                   `json:"type"`
	Properties *orderedmap.OrderedMap[string, Property] `json:"properties"`
	Required   []string                                 `json:"required"`
}

// Property is the schema of a single parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// NewParameters creates an empty object schema.
func NewParameters() Parameters {
	return Parameters{
		Type:       "object",
		Properties: orderedmap.New[string, Property](),
		Required:   []string{},
	}
}

// Names returns property names in declaration order.
func (p Parameters) Names() []string {
	if p.Properties == nil {
		return nil
	}
	names := make([]string, 0, p.Properties.Len())
	for pair := p.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Normalized fills in what a zero Parameters leaves out, so it serializes as
// an object schema with empty properties and an empty required list.
func (p Parameters) Normalized() Parameters {
	if p.Type == "" {
		p.Type = "object"
	}
	if p.Properties == nil {
		p.Properties = orderedmap.New[string, Property]()
	}
	if p.Required == nil {
		p.Required = []string{}
	}
	return p
}
