package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type operator string

type calcArgs struct {
	A        int      `json:"a"`
	B        int      `json:"b"`
	Operator operator `json:"operator"`
}

type mixedArgs struct {
	Query   string   `json:"query"`
	Limit   int      `json:"limit,omitempty"`
	Ratio   float64  `json:"ratio"`
	Strict  bool     `json:"strict"`
	Tags    []string `json:"tags"`
	Skipped string   `json:"-"`
	hidden  string
}

func TestDescribeKeepsDeclarationOrder(t *testing.T) {
	d, err := Describe[calcArgs]("tool_calculator", "  Calculate two integers.  ")
	require.NoError(t, err)

	assert.Equal(t, "tool_calculator", d.Name())
	assert.Equal(t, "Calculate two integers.", d.Description())
	assert.Equal(t, []string{"a", "b", "operator"}, d.ParameterNames())
	assert.Equal(t, []Parameter{
		{Name: "a", Type: "integer", Required: true},
		{Name: "b", Type: "integer", Required: true},
		{Name: "operator", Type: "string", Required: true},
	}, d.Parameters())
}

func TestDescribeMapsKinds(t *testing.T) {
	d, err := Describe[*mixedArgs]("tool_search", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"query", "limit", "ratio", "strict", "tags"}, d.ParameterNames())
	types := make([]string, 0, 5)
	for _, p := range d.Parameters() {
		types = append(types, p.Type)
		assert.True(t, p.Required, p.Name)
	}
	assert.Equal(t, []string{"string", "integer", "number", "boolean", "array"}, types)
	assert.Empty(t, d.Description())
}

func TestDescribeRejectsNonStruct(t *testing.T) {
	_, err := Describe[string]("tool_bad", "")
	assert.Error(t, err)

	type untyped struct {
		Value any `json:"value"`
	}
	_, err = Describe[untyped]("tool_bad", "")
	assert.ErrorContains(t, err, "value")
}

func TestDescriptorIsImmutable(t *testing.T) {
	base := NewDescriptor("tool_echo", "Echo.").Param("text", "string")
	extended := base.Param("times", "integer")

	assert.Equal(t, []string{"text"}, base.ParameterNames())
	assert.Equal(t, []string{"text", "times"}, extended.ParameterNames())

	params := base.Parameters()
	params[0].Name = "changed"
	assert.Equal(t, "text", base.Parameters()[0].Name)
}

func TestDefinitionShape(t *testing.T) {
	d, err := Describe[calcArgs]("tool_calculator", "Calculate two integers.")
	require.NoError(t, err)

	data, err := json.Marshal(d.Definition())
	require.NoError(t, err)

	want := `{"type":"function","function":{"name":"tool_calculator","description":"Calculate two integers.",` +
		`"parameters":{"type":"object","properties":{` +
		`"a":{"type":"integer","description":""},` +
		`"b":{"type":"integer","description":""},` +
		`"operator":{"type":"string","description":""}},` +
		`"required":["a","b","operator"]}}}`
	assert.Equal(t, want, string(data))
}

func TestDefinitionWithoutParameters(t *testing.T) {
	data, err := json.Marshal(NewDescriptor("tool_now", "").Definition())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"function","function":{"name":"tool_now","description":"",
		"parameters":{"type":"object","properties":{},"required":[]}}}`, string(data))
}

func TestDefinitionRoundTrip(t *testing.T) {
	d, err := Describe[calcArgs]("tool_calculator", "Calculate two integers.")
	require.NoError(t, err)

	data, err := json.Marshal(d.Definition())
	require.NoError(t, err)

	parsed, err := ParseDefinition(data)
	require.NoError(t, err)
	assert.Equal(t, d.Name(), parsed.Name())
	assert.Equal(t, d.Description(), parsed.Description())
	assert.Equal(t, d.RequiredNames(), parsed.RequiredNames())
	assert.Equal(t, d.Parameters(), parsed.Parameters())
}

func TestParseDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: `{`},
		{name: "wrong type", data: `{"type":"retrieval","function":{"name":"tool_x"}}`},
		{name: "missing name", data: `{"type":"function","function":{"name":""}}`},
		{name: "undeclared required", data: `{"type":"function","function":{"name":"tool_x",
			"parameters":{"type":"object","properties":{},"required":["a"]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
