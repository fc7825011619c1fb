package genui

import (
	"fmt"
	"regexp"
	"strings"
)

// EmitFunc receives named triggers forwarded by emit actions. The
// hosting page decides what to do with them (e.g. end the turn).
type EmitFunc func(target string, value interface{})

// RunCodeFunc executes a run_code action against a named code atom.
type RunCodeFunc func(target string)

// Session interprets one app payload: it renders the layout tree and
// owns the reactive state for the lifetime of a single rendering
// session. Not safe for concurrent use; one session serves one client.
type Session struct {
	layout  *Atom
	state   map[string]interface{}
	onEmit  EmitFunc
	onRun   RunCodeFunc
	version int
}

// NewSession validates the payload and seeds the reactive state from
// initialState.
func NewSession(p *Payload, onEmit EmitFunc, onRun RunCodeFunc) (*Session, error) {
	if p.Type != KindApp {
		return nil, fmt.Errorf("interpreter: payload type %q is not an app", p.Type)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	state := p.InitialState
	if state == nil {
		state = map[string]interface{}{}
	}
	return &Session{layout: p.Layout, state: state, onEmit: onEmit, onRun: onRun}, nil
}

// State returns the current state root. Callers must treat it as
// read-only; mutations go through UpdateState.
func (s *Session) State() map[string]interface{} {
	return s.state
}

// Version increments on every state change, for re-render scheduling.
func (s *Session) Version() int {
	return s.version
}

// Get resolves a dot path against the state tree.
func (s *Session) Get(path string) (interface{}, bool) {
	return lookup(s.state, path)
}

// UpdateState writes value at path, shallow-copying only the maps on
// the path's ancestor chain. Untouched subtrees keep their identity so
// renderers can skip them.
func (s *Session) UpdateState(path string, value interface{}) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	s.state = writePath(s.state, strings.Split(path, "."), value)
	s.version++
	return nil
}

func writePath(node map[string]interface{}, segments []string, value interface{}) map[string]interface{} {
	copied := make(map[string]interface{}, len(node)+1)
	for k, v := range node {
		copied[k] = v
	}
	head := segments[0]
	if len(segments) == 1 {
		copied[head] = value
		return copied
	}
	child, _ := copied[head].(map[string]interface{})
	if child == nil {
		child = map[string]interface{}{}
	}
	copied[head] = writePath(child, segments[1:], value)
	return copied
}

func lookup(node map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = node
	for _, seg := range segments {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Apply interprets one action against the session state.
func (s *Session) Apply(a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	switch a.Type {
	case ActionSet:
		return s.UpdateState(a.Path, a.Value)
	case ActionIncrement, ActionDecrement:
		current, _ := s.Get(a.Path)
		delta := toFloat(a.Value, 1)
		if a.Type == ActionDecrement {
			delta = -delta
		}
		return s.UpdateState(a.Path, toFloat(current, 0)+delta)
	case ActionToggle:
		current, _ := s.Get(a.Path)
		b, _ := current.(bool)
		return s.UpdateState(a.Path, !b)
	case ActionPush:
		current, _ := s.Get(a.Path)
		list, _ := current.([]interface{})
		return s.UpdateState(a.Path, append(append([]interface{}{}, list...), a.Value))
	case ActionRunCode:
		if s.onRun != nil {
			s.onRun(a.Target)
		}
		return nil
	case ActionEmit:
		if s.onEmit != nil {
			s.onEmit(a.Target, a.Value)
		}
		return nil
	}
	return fmt.Errorf("unknown action type %q", a.Type)
}

// Click executes a button atom's actions in order. The first failing
// action stops the run.
func (s *Session) Click(button *Atom) error {
	if button.Type != AtomButton {
		return fmt.Errorf("click on non-button atom %q", button.Type)
	}
	for i, a := range button.Actions {
		if err := s.Apply(a); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

func toFloat(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return fallback
}

var interpolationPattern = regexp.MustCompile(`\{\{\s*state\.([a-zA-Z0-9_.]+)\s*\}\}`)

// Interpolate resolves {{state.path}} markers in text against the
// current state. Unresolvable paths render as empty strings.
func (s *Session) Interpolate(text string) string {
	return interpolationPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := interpolationPattern.FindStringSubmatch(match)[1]
		value, ok := s.Get(path)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%v", value)
	})
}

// Rendered is a resolved view of one atom: bindings read out of state
// and text interpolated. Children mirror the layout tree.
type Rendered struct {
	Atom     *Atom
	Text     string
	Bound    interface{}
	Children []*Rendered
}

// Render walks the layout and resolves every atom against the current
// state. Call again after each state change.
func (s *Session) Render() *Rendered {
	return s.render(s.layout)
}

func (s *Session) render(a *Atom) *Rendered {
	r := &Rendered{Atom: a}
	switch a.Type {
	case AtomText:
		r.Text = s.Interpolate(a.Value)
	case AtomCode:
		r.Text = a.Value
	case AtomSlider, AtomSwitch:
		r.Bound, _ = s.Get(a.Bind)
	case AtomStack, AtomCard:
		for _, child := range a.Children {
			r.Children = append(r.Children, s.render(child))
		}
	}
	return r
}
