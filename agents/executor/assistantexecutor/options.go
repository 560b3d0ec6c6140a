/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package assistantexecutor

import (
	"errors"
	"fmt"
)

// Option is a functional option for configuring the executor
type Option func(*executor) error

// WithMaxToolRounds caps how many batches of tool outputs one Execute may submit.
func WithMaxToolRounds(n int) Option {
	return func(e *executor) error {
		if n <= 0 {
			return fmt.Errorf("max tool rounds must be positive, got %d", n)
		}
		e.maxToolRounds = n
		return nil
	}
}

// WithModel sets the model name reported in metrics until a run reports its own.
func WithModel(model string) Option {
	return func(e *executor) error {
		if model == "" {
			return errors.New("model cannot be empty")
		}
		e.modelName = model
		return nil
	}
}

// WithOverrideTools starts runs with the definitions of the tools passed to
// Execute instead of the tools configured on the assistant.
func WithOverrideTools(override bool) Option {
	return func(e *executor) error {
		e.overrideTools = override
		return nil
	}
}
