package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/voocel/copilot/schema"
)

// Parameter describes one declared tool parameter.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Descriptor is the structural description of a tool: its name, its
// description and its parameters in declaration order.
// A Descriptor is a value; Param returns a new one and accessors return copies.
type Descriptor struct {
	name        string
	description string
	params      []Parameter
}

// NewDescriptor starts an explicit descriptor without reflection.
func NewDescriptor(name, description string) Descriptor {
	return Descriptor{
		name:        name,
		description: strings.TrimSpace(description),
	}
}

// Param returns a copy of d with a required parameter appended.
func (d Descriptor) Param(name, typ string) Descriptor {
	d.params = append(slices.Clone(d.params), Parameter{Name: name, Type: typ, Required: true})
	return d
}

func (d Descriptor) Name() string {
	return d.name
}

func (d Descriptor) Description() string {
	return d.description
}

// Parameters returns the parameters in declaration order.
func (d Descriptor) Parameters() []Parameter {
	return slices.Clone(d.params)
}

// ParameterNames returns parameter names in declaration order.
func (d Descriptor) ParameterNames() []string {
	names := make([]string, len(d.params))
	for i, p := range d.params {
		names[i] = p.Name
	}
	return names
}

// RequiredNames returns the names of required parameters in declaration order.
func (d Descriptor) RequiredNames() []string {
	names := make([]string, 0, len(d.params))
	for _, p := range d.params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Describe derives a descriptor from the argument struct T of a tool function.
// Parameters are the exported fields of T in declaration order, named by their
// json tag. Every parameter is required.
func Describe[T any](name, description string) (Descriptor, error) {
	return DescribeType(reflect.TypeFor[T](), name, description)
}

// DescribeType is Describe for a runtime type.
func DescribeType(t reflect.Type, name, description string) (Descriptor, error) {
	if t == nil {
		return Descriptor{}, fmt.Errorf("describe %s: nil argument type", name)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Descriptor{}, fmt.Errorf("describe %s: argument type %s is not a struct", name, t)
	}

	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	s := reflector.ReflectFromType(t)

	d := NewDescriptor(name, description)
	if s.Properties == nil {
		return d, nil
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		typ := propertyType(pair.Value)
		if typ == "" {
			return Descriptor{}, fmt.Errorf("describe %s: parameter %s has no JSON type", name, pair.Key)
		}
		d = d.Param(pair.Key, typ)
	}
	return d, nil
}

// propertyType reduces a reflected property to its base JSON type name.
// Enum values and per-field descriptions are dropped.
func propertyType(s *jsonschema.Schema) string {
	if s == nil {
		return ""
	}
	if s.Type != "" {
		return s.Type
	}
	for _, alt := range s.AnyOf {
		if alt != nil && alt.Type != "" && alt.Type != "null" {
			return alt.Type
		}
	}
	return ""
}

// Definition emits the function-calling schema sent to the model.
func (d Descriptor) Definition() schema.ToolDefinition {
	params := schema.NewParameters()
	for _, p := range d.params {
		params.Properties.Set(p.Name, schema.Property{Type: p.Type})
		if p.Required {
			params.Required = append(params.Required, p.Name)
		}
	}
	return schema.ToolDefinition{
		Type: "function",
		Function: schema.FunctionDefinition{
			Name:        d.name,
			Description: d.description,
			Parameters:  params,
		},
	}
}

// ParseDefinition reads a descriptor back from its function-calling schema.
func ParseDefinition(data []byte) (Descriptor, error) {
	var def schema.ToolDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return Descriptor{}, fmt.Errorf("parse tool definition: %w", err)
	}
	if def.Type != "function" {
		return Descriptor{}, fmt.Errorf("parse tool definition: unsupported type %q", def.Type)
	}
	if def.Function.Name == "" {
		return Descriptor{}, errors.New("parse tool definition: missing function name")
	}

	d := NewDescriptor(def.Function.Name, def.Function.Description)
	required := def.Function.Parameters.Required
	if def.Function.Parameters.Properties != nil {
		for pair := def.Function.Parameters.Properties.Oldest(); pair != nil; pair = pair.Next() {
			d.params = append(d.params, Parameter{
				Name:     pair.Key,
				Type:     pair.Value.Type,
				Required: slices.Contains(required, pair.Key),
			})
		}
	}
	for _, name := range required {
		if !slices.ContainsFunc(d.params, func(p Parameter) bool { return p.Name == name }) {
			return Descriptor{}, fmt.Errorf("parse tool definition: required parameter %q is not declared", name)
		}
	}
	return d, nil
}

// validator compiles the argument schema used before invocation.
// Undeclared arguments are rejected.
func (d Descriptor) validator() (*gojsonschema.Schema, error) {
	properties := make(map[string]any, len(d.params))
	for _, p := range d.params {
		properties[p.Name] = map[string]any{"type": p.Type}
	}
	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if required := d.RequiredNames(); len(required) > 0 {
		doc["required"] = required
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
}

// validateArguments checks raw JSON arguments against the compiled schema.
func validateArguments(v *gojsonschema.Schema, args []byte) error {
	if v == nil {
		return nil
	}
	result, err := v.Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("validate arguments: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid arguments: %s", strings.Join(msgs, "; "))
	}
	return nil
}
