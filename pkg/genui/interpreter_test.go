package genui

import (
	"testing"
)

func counterPayload() *Payload {
	return &Payload{
		Type:         KindApp,
		InitialState: map[string]interface{}{"count": float64(0), "ui": map[string]interface{}{"dark": false}},
		Layout: &Atom{
			Type: AtomStack,
			Children: []*Atom{
				{Type: AtomText, Value: "Count: {{state.count}}"},
				{Type: AtomButton, Label: "+1", Actions: []Action{{Type: ActionIncrement, Path: "count"}}},
				{Type: AtomSwitch, Bind: "ui.dark"},
			},
		},
	}
}

func TestNewSessionRejectsNonApp(t *testing.T) {
	if _, err := NewSession(Fallback("hi"), nil, nil); err == nil {
		t.Fatal("non-app payloads must be rejected")
	}
}

func TestUpdateStateCopyOnWrite(t *testing.T) {
	s, err := NewSession(&Payload{
		Type: KindApp,
		InitialState: map[string]interface{}{
			"settings": map[string]interface{}{"volume": float64(5)},
			"profile":  map[string]interface{}{"name": "Ada"},
		},
		Layout: &Atom{Type: AtomText, Value: "x"},
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	before := s.State()
	beforeProfile := before["profile"].(map[string]interface{})

	if err := s.UpdateState("settings.volume", float64(7)); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	after := s.State()

	got, _ := s.Get("settings.volume")
	if got != float64(7) {
		t.Errorf("settings.volume = %v, want 7", got)
	}

	// The old snapshot is untouched
	oldVolume, _ := lookup(before, "settings.volume")
	if oldVolume != float64(5) {
		t.Errorf("previous snapshot mutated: %v", oldVolume)
	}

	// Untouched sibling subtree keeps its identity; a write there would
	// be visible through the old snapshot too
	afterProfile := after["profile"].(map[string]interface{})
	afterProfile["probe"] = true
	if _, leaked := beforeProfile["probe"]; !leaked {
		t.Error("untouched subtree was copied instead of shared")
	}
	delete(afterProfile, "probe")
}

func TestUpdateStateCreatesIntermediateMaps(t *testing.T) {
	s, _ := NewSession(&Payload{
		Type:   KindApp,
		Layout: &Atom{Type: AtomText, Value: "x"},
	}, nil, nil)

	if err := s.UpdateState("quiz.current.index", float64(2)); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	got, ok := s.Get("quiz.current.index")
	if !ok || got != float64(2) {
		t.Errorf("Get = %v/%v, want 2/true", got, ok)
	}
}

func TestApplyActions(t *testing.T) {
	s, err := NewSession(counterPayload(), nil, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if err := s.Apply(Action{Type: ActionIncrement, Path: "count"}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := s.Apply(Action{Type: ActionIncrement, Path: "count", Value: float64(4)}); err != nil {
		t.Fatalf("increment by value: %v", err)
	}
	if got, _ := s.Get("count"); got != float64(5) {
		t.Errorf("count = %v, want 5", got)
	}

	if err := s.Apply(Action{Type: ActionDecrement, Path: "count", Value: float64(2)}); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if got, _ := s.Get("count"); got != float64(3) {
		t.Errorf("count = %v, want 3", got)
	}

	if err := s.Apply(Action{Type: ActionToggle, Path: "ui.dark"}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got, _ := s.Get("ui.dark"); got != true {
		t.Errorf("ui.dark = %v, want true", got)
	}

	if err := s.Apply(Action{Type: ActionPush, Path: "answers", Value: "a"}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := s.Apply(Action{Type: ActionPush, Path: "answers", Value: "b"}); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, _ := s.Get("answers")
	list, ok := got.([]interface{})
	if !ok || len(list) != 2 || list[1] != "b" {
		t.Errorf("answers = %v", got)
	}
}

func TestApplyEmitAndRunCode(t *testing.T) {
	var emitted []string
	var ran []string
	s, _ := NewSession(counterPayload(),
		func(target string, _ interface{}) { emitted = append(emitted, target) },
		func(target string) { ran = append(ran, target) },
	)

	if err := s.Apply(Action{Type: ActionEmit, Target: "finish"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := s.Apply(Action{Type: ActionRunCode, Target: "editor"}); err != nil {
		t.Fatalf("run_code: %v", err)
	}
	if len(emitted) != 1 || emitted[0] != "finish" {
		t.Errorf("emitted = %v", emitted)
	}
	if len(ran) != 1 || ran[0] != "editor" {
		t.Errorf("ran = %v", ran)
	}
}

func TestApplyRejectsInvalidAction(t *testing.T) {
	s, _ := NewSession(counterPayload(), nil, nil)
	if err := s.Apply(Action{Type: ActionSet, Path: "count"}); err == nil {
		t.Error("set without value must fail")
	}
	if err := s.Apply(Action{Type: "explode", Path: "count"}); err == nil {
		t.Error("unknown action type must fail")
	}
	if err := s.Apply(Action{Type: ActionIncrement, Path: "a..b"}); err == nil {
		t.Error("malformed path must fail")
	}
}

func TestClickRunsActionsInOrder(t *testing.T) {
	s, _ := NewSession(counterPayload(), nil, nil)
	button := &Atom{Type: AtomButton, Actions: []Action{
		{Type: ActionSet, Path: "count", Value: float64(10)},
		{Type: ActionIncrement, Path: "count"},
	}}

	if err := s.Click(button); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if got, _ := s.Get("count"); got != float64(11) {
		t.Errorf("count = %v, want 11", got)
	}

	if err := s.Click(&Atom{Type: AtomText, Value: "x"}); err == nil {
		t.Error("click on non-button must fail")
	}
}

func TestInterpolate(t *testing.T) {
	s, _ := NewSession(counterPayload(), nil, nil)
	_ = s.UpdateState("count", float64(3))
	_ = s.UpdateState("user.name", "Ada")

	tests := []struct {
		in   string
		want string
	}{
		{"Count: {{state.count}}", "Count: 3"},
		{"{{ state.user.name }} scored {{state.count}}", "Ada scored 3"},
		{"missing: [{{state.nope}}]", "missing: []"},
		{"no markers", "no markers"},
	}
	for _, tt := range tests {
		if got := s.Interpolate(tt.in); got != tt.want {
			t.Errorf("Interpolate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderResolvesBindings(t *testing.T) {
	s, _ := NewSession(counterPayload(), nil, nil)
	_ = s.Apply(Action{Type: ActionIncrement, Path: "count"})

	r := s.Render()
	if len(r.Children) != 3 {
		t.Fatalf("expected 3 rendered children, got %d", len(r.Children))
	}
	if r.Children[0].Text != "Count: 1" {
		t.Errorf("text = %q", r.Children[0].Text)
	}
	if r.Children[2].Bound != false {
		t.Errorf("switch bound = %v, want false", r.Children[2].Bound)
	}
}

func TestVersionIncrementsOnWrite(t *testing.T) {
	s, _ := NewSession(counterPayload(), nil, nil)
	v := s.Version()
	_ = s.Apply(Action{Type: ActionIncrement, Path: "count"})
	if s.Version() != v+1 {
		t.Errorf("version = %d, want %d", s.Version(), v+1)
	}
	// emit does not touch state
	_ = s.Apply(Action{Type: ActionEmit, Target: "t"})
	if s.Version() != v+1 {
		t.Error("emit must not bump the version")
	}
}
