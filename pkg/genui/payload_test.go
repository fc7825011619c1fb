package genui

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeValidPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{
			name: "explanation",
			raw:  `{"type":"explanation","markdown":"# Photosynthesis\nIt converts light."}`,
			want: KindExplanation,
		},
		{
			name: "quiz",
			raw:  `{"type":"quiz","questions":[{"question":"2+2?","options":["3","4"],"answer":1}]}`,
			want: KindQuiz,
		},
		{
			name: "code exercise",
			raw:  `{"type":"code_exercise","language":"python","instruction":"Sum a list","starterCode":"def total(xs):\n    pass"}`,
			want: KindCodeExercise,
		},
		{
			name: "mindmap",
			raw:  `{"type":"mindmap","root":{"label":"Cells","children":[{"label":"Organelles"}]}}`,
			want: KindMindMap,
		},
		{
			name: "flashcards",
			raw:  `{"type":"flashcards","cards":[{"front":"ATP","back":"Energy carrier"}]}`,
			want: KindFlashcards,
		},
		{
			name: "timeline",
			raw:  `{"type":"timeline","events":[{"label":"Discovery","date":"1838"}]}`,
			want: KindTimeline,
		},
		{
			name: "comparison",
			raw:  `{"type":"comparison","columns":["Mitosis","Meiosis"],"rows":[{"label":"Divisions","cells":["1","2"]}]}`,
			want: KindComparison,
		},
		{
			name: "summary",
			raw:  `{"type":"summary","title":"Plan","sections":[{"heading":"Week 1","body":"Read chapter 1"}]}`,
			want: KindSummary,
		},
		{
			name: "fill blank",
			raw:  `{"type":"fill_blank","blanks":[{"text":"Water is ___","answer":"H2O"}]}`,
			want: KindFillBlank,
		},
		{
			name: "app",
			raw: `{"type":"app","initialState":{"count":0},"layout":{"type":"stack","children":[` +
				`{"type":"text","value":"Count: {{state.count}}"},` +
				`{"type":"button","label":"+1","actions":[{"type":"increment","path":"count"}]}]}}`,
			want: KindApp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if p.Type != tt.want {
				t.Errorf("Type = %q, want %q", p.Type, tt.want)
			}
		})
	}
}

// Serializing a valid payload and decoding it back must yield the same
// payload for every union member.
func TestPayloadSurvivesRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload *Payload
	}{
		{
			name:    "explanation",
			payload: &Payload{Type: KindExplanation, Markdown: "# Photosynthesis\nIt converts light."},
		},
		{
			name: "quiz",
			payload: &Payload{Type: KindQuiz, Questions: []QuizQuestion{
				{Question: "2+2?", Options: []string{"3", "4"}, Answer: 1, Explanation: "Basic arithmetic"},
			}},
		},
		{
			name: "interactive quiz",
			payload: &Payload{Type: KindInteractiveQuiz, Questions: []QuizQuestion{
				{Question: "Largest planet?", Options: []string{"Mars", "Jupiter", "Venus"}, Answer: 1},
			}},
		},
		{
			name: "code exercise",
			payload: &Payload{
				Type:        KindCodeExercise,
				Language:    "python",
				Instruction: "Sum a list",
				StarterCode: "def total(xs):\n    pass",
				Solution:    "def total(xs):\n    return sum(xs)",
			},
		},
		{
			name: "mindmap",
			payload: &Payload{Type: KindMindMap, Root: &MindMapNode{
				Label:    "Cells",
				Children: []*MindMapNode{{Label: "Organelles"}, {Label: "Membrane"}},
			}},
		},
		{
			name: "flashcards",
			payload: &Payload{Type: KindFlashcards, Cards: []Flashcard{
				{Front: "ATP", Back: "Energy carrier"},
			}},
		},
		{
			name: "timeline",
			payload: &Payload{Type: KindTimeline, Events: []TimelineEvent{
				{Label: "Discovery", Date: "1838", Description: "Cell theory proposed"},
			}},
		},
		{
			name: "comparison",
			payload: &Payload{
				Type:    KindComparison,
				Columns: []string{"Mitosis", "Meiosis"},
				Rows:    []ComparisonRow{{Label: "Divisions", Cells: []string{"1", "2"}}},
			},
		},
		{
			name: "summary",
			payload: &Payload{Type: KindSummary, Title: "Plan", Sections: []SummarySection{
				{Heading: "Week 1", Body: "Read chapter 1"},
			}},
		},
		{
			name: "fill blank",
			payload: &Payload{Type: KindFillBlank, Blanks: []FillBlank{
				{Text: "Water is ___", Answer: "H2O"},
			}},
		},
		{
			name: "app",
			payload: &Payload{
				Type:         KindApp,
				InitialState: map[string]interface{}{"count": float64(0), "running": false},
				Layout: &Atom{Type: AtomStack, Children: []*Atom{
					{Type: AtomText, Value: "Count: {{state.count}}"},
					{Type: AtomSlider, Bind: "speed", Min: 1, Max: 10, Step: 1},
					{Type: AtomButton, Label: "+1", Actions: []Action{
						{Type: ActionIncrement, Path: "count"},
						{Type: ActionSet, Path: "running", Value: true},
					}},
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.payload)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			got, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.payload) {
				t.Errorf("round trip mutated payload:\n got  %#v\n want %#v", got, tt.payload)
			}
		})
	}
}

func TestDecodeRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "unknown type",
			raw:     `{"type":"hologram"}`,
			wantErr: "unknown payload type",
		},
		{
			name:    "explanation without markdown",
			raw:     `{"type":"explanation"}`,
			wantErr: "markdown is required",
		},
		{
			name:    "quiz answer out of range",
			raw:     `{"type":"quiz","questions":[{"question":"?","options":["a","b"],"answer":5}]}`,
			wantErr: "answer index out of range",
		},
		{
			name:    "quiz with one option",
			raw:     `{"type":"quiz","questions":[{"question":"?","options":["a"],"answer":0}]}`,
			wantErr: ">=2 options",
		},
		{
			name:    "comparison row width mismatch",
			raw:     `{"type":"comparison","columns":["a","b"],"rows":[{"label":"r","cells":["x"]}]}`,
			wantErr: "row 0 has 1 cells",
		},
		{
			name:    "app without layout",
			raw:     `{"type":"app","initialState":{}}`,
			wantErr: "layout is required",
		},
		{
			name: "container nesting too deep",
			raw: `{"type":"app","layout":{"type":"stack","children":[{"type":"card","children":[` +
				`{"type":"stack","children":[{"type":"card","children":[{"type":"text","value":"deep"}]}]}]}]}}`,
			wantErr: "nesting exceeds",
		},
		{
			name:    "slider without range",
			raw:     `{"type":"app","layout":{"type":"slider","bind":"speed","min":5,"max":5}}`,
			wantErr: "max > min",
		},
		{
			name:    "button without actions",
			raw:     `{"type":"app","layout":{"type":"button","label":"Go"}}`,
			wantErr: "at least one action",
		},
		{
			name:    "malformed json",
			raw:     `{"type":`,
			wantErr: "payload decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatal("Decode() expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("a.b.c"); err != nil {
		t.Errorf("valid path rejected: %v", err)
	}
	if err := ValidatePath(""); err == nil {
		t.Error("empty path must be rejected")
	}
	if err := ValidatePath("a..b"); err == nil {
		t.Error("empty segment must be rejected")
	}
	if err := ValidatePath("a.b.c.d.e.f.g.h.i"); err == nil {
		t.Error("over-deep path must be rejected")
	}
}

func TestFallback(t *testing.T) {
	p := Fallback("sorry")
	if err := p.Validate(); err != nil {
		t.Fatalf("fallback payload must always validate: %v", err)
	}
	if p.Type != KindExplanation || p.Markdown != "sorry" {
		t.Errorf("unexpected fallback: %+v", p)
	}
}
