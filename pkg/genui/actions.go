package genui

import (
	"fmt"
	"strings"
)

// ActionType enumerates the declarative mutations a button can carry.
type ActionType string

const (
	ActionSet       ActionType = "set"
	ActionIncrement ActionType = "increment"
	ActionDecrement ActionType = "decrement"
	ActionToggle    ActionType = "toggle"
	ActionPush      ActionType = "push"
	ActionRunCode   ActionType = "run_code"
	ActionEmit      ActionType = "emit"
)

// Action is an ephemeral instruction interpreted against the reactive
// state of one rendering session. It is never persisted.
type Action struct {
	Type   ActionType  `json:"type"`
	Path   string      `json:"path,omitempty"`
	Value  interface{} `json:"value,omitempty"`
	Target string      `json:"target,omitempty"`
}

// MaxPathDepth caps dot-path length to keep state trees shallow.
const MaxPathDepth = 8

// ValidatePath checks a dot-delimited state path at payload-validation
// time, so the interpreter never sees a malformed path.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	segments := strings.Split(path, ".")
	if len(segments) > MaxPathDepth {
		return fmt.Errorf("path %q exceeds %d segments", path, MaxPathDepth)
	}
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("path %q has an empty segment", path)
		}
	}
	return nil
}

// Validate checks the action's type-specific requirements.
func (a *Action) Validate() error {
	switch a.Type {
	case ActionSet, ActionPush:
		if err := ValidatePath(a.Path); err != nil {
			return err
		}
		if a.Value == nil {
			return fmt.Errorf("%s action needs a value", a.Type)
		}
	case ActionIncrement, ActionDecrement, ActionToggle:
		if err := ValidatePath(a.Path); err != nil {
			return err
		}
	case ActionRunCode:
		if a.Target == "" {
			return fmt.Errorf("run_code action needs a target")
		}
	case ActionEmit:
		if a.Target == "" {
			return fmt.Errorf("emit action needs a target")
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}
