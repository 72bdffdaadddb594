// Package builtin provides the default tools shipped with the assistant.
package builtin

import "github.com/voocel/copilot/tools"

// Toolkit returns the built-in tools in registration order.
func Toolkit() []tools.Tool {
	return []tools.Tool{
		NewCalculator(),
		NewWebScraper().Tool(),
	}
}

// NewRegistry builds a registry over the built-in tools.
func NewRegistry() (*tools.Registry, error) {
	return tools.NewRegistry(Toolkit()...)
}
