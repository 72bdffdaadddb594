package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// Tool defines the tool interface.
type Tool interface {
	Descriptor() Descriptor
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// FunctionTool adapts a typed Go function into a Tool.
// The arguments arrive as named parameters decoded into T.
type FunctionTool[T any, R any] struct {
	descriptor Descriptor
	fn         func(ctx context.Context, args T) (R, error)
}

// NewFunctionTool describes T once and wraps fn.
func NewFunctionTool[T any, R any](name, description string, fn func(ctx context.Context, args T) (R, error)) (*FunctionTool[T, R], error) {
	if fn == nil {
		return nil, fmt.Errorf("tool %s: nil function", name)
	}
	descriptor, err := Describe[T](name, description)
	if err != nil {
		return nil, err
	}
	return &FunctionTool[T, R]{descriptor: descriptor, fn: fn}, nil
}

// MustFunctionTool is NewFunctionTool that panics on error. Intended for package-level toolkits.
func MustFunctionTool[T any, R any](name, description string, fn func(ctx context.Context, args T) (R, error)) *FunctionTool[T, R] {
	t, err := NewFunctionTool(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *FunctionTool[T, R]) Descriptor() Descriptor {
	return t.descriptor
}

func (t *FunctionTool[T, R]) Invoke(ctx context.Context, args map[string]any) (string, error) {
	var input T
	if len(args) > 0 {
		data, err := json.Marshal(args)
		if err != nil {
			return "", fmt.Errorf("encode arguments: %w", err)
		}
		if err := json.Unmarshal(data, &input); err != nil {
			return "", fmt.Errorf("decode arguments: %w", err)
		}
	}
	out, err := t.fn(ctx, input)
	if err != nil {
		return "", err
	}
	return Stringify(out), nil
}

// HandlerTool pairs an explicit descriptor with an untyped handler.
type HandlerTool struct {
	descriptor Descriptor
	handler    func(ctx context.Context, args map[string]any) (string, error)
}

// NewTool builds a tool from an explicit descriptor.
func NewTool(descriptor Descriptor, handler func(ctx context.Context, args map[string]any) (string, error)) *HandlerTool {
	return &HandlerTool{descriptor: descriptor, handler: handler}
}

func (t *HandlerTool) Descriptor() Descriptor {
	return t.descriptor
}

func (t *HandlerTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	if t.handler == nil {
		return "", fmt.Errorf("tool %s: nil handler", t.descriptor.Name())
	}
	return t.handler(ctx, args)
}

// Stringify coerces a tool return value into its textual output.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}
