package genui

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the payload union. The kind decides which other
// fields of Payload are legal.
type Kind string

const (
	KindExplanation     Kind = "explanation"
	KindQuiz            Kind = "quiz"
	KindCodeExercise    Kind = "code_exercise"
	KindMindMap         Kind = "mindmap"
	KindFlashcards      Kind = "flashcards"
	KindTimeline        Kind = "timeline"
	KindComparison      Kind = "comparison"
	KindSummary         Kind = "summary"
	KindInteractiveQuiz Kind = "interactive_quiz"
	KindFillBlank       Kind = "fill_blank"
	KindApp             Kind = "app"
)

// MaxContainerDepth caps nesting of stack/card atoms in an app layout.
const MaxContainerDepth = 3

// Payload is the wire contract between generation and the client
// interpreter. Exactly one shape's field group is populated, selected
// by Type.
type Payload struct {
	Type Kind `json:"type"`

	// explanation
	Markdown string `json:"markdown,omitempty"`

	// quiz / interactive_quiz
	Questions []QuizQuestion `json:"questions,omitempty"`

	// code_exercise
	Language    string `json:"language,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	StarterCode string `json:"starterCode,omitempty"`
	Solution    string `json:"solution,omitempty"`

	// mindmap
	Root *MindMapNode `json:"root,omitempty"`

	// flashcards
	Cards []Flashcard `json:"cards,omitempty"`

	// timeline
	Events []TimelineEvent `json:"events,omitempty"`

	// comparison
	Columns []string        `json:"columns,omitempty"`
	Rows    []ComparisonRow `json:"rows,omitempty"`

	// summary
	Title    string           `json:"title,omitempty"`
	Sections []SummarySection `json:"sections,omitempty"`

	// fill_blank
	Blanks []FillBlank `json:"blanks,omitempty"`

	// app
	InitialState map[string]interface{} `json:"initialState,omitempty"`
	Layout       *Atom                  `json:"layout,omitempty"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

type MindMapNode struct {
	Label    string         `json:"label"`
	Children []*MindMapNode `json:"children,omitempty"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type TimelineEvent struct {
	Label       string `json:"label"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

type ComparisonRow struct {
	Label string   `json:"label"`
	Cells []string `json:"cells"`
}

type SummarySection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type FillBlank struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// AtomType identifies a UI building block. Leaves: text, slider,
// switch, button, code. Containers: stack, card.
type AtomType string

const (
	AtomText   AtomType = "text"
	AtomSlider AtomType = "slider"
	AtomSwitch AtomType = "switch"
	AtomButton AtomType = "button"
	AtomCode   AtomType = "code"
	AtomStack  AtomType = "stack"
	AtomCard   AtomType = "card"
)

// Atom is one node of an app layout tree.
type Atom struct {
	Type AtomType `json:"type"`

	// text / code content, may contain {{state.path}} interpolations
	Value string `json:"value,omitempty"`

	Label string `json:"label,omitempty"`

	// slider / switch binding into the reactive state tree
	Bind string  `json:"bind,omitempty"`
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Step float64 `json:"step,omitempty"`

	// code
	Language string `json:"language,omitempty"`

	// button
	Actions []Action `json:"actions,omitempty"`

	// stack / card
	Children []*Atom `json:"children,omitempty"`
}

// Decode parses raw JSON into a payload and validates it. This is the
// trust boundary for model output: anything not matching a known shape
// is rejected.
func Decode(raw []byte) (*Payload, error) {
	var p Payload
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("payload decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that the payload matches exactly one union member.
func (p *Payload) Validate() error {
	switch p.Type {
	case KindExplanation:
		if p.Markdown == "" {
			return fmt.Errorf("explanation: markdown is required")
		}
	case KindQuiz, KindInteractiveQuiz:
		if len(p.Questions) == 0 {
			return fmt.Errorf("%s: at least one question is required", p.Type)
		}
		for i, q := range p.Questions {
			if q.Question == "" || len(q.Options) < 2 {
				return fmt.Errorf("%s: question %d needs text and >=2 options", p.Type, i)
			}
			if q.Answer < 0 || q.Answer >= len(q.Options) {
				return fmt.Errorf("%s: question %d answer index out of range", p.Type, i)
			}
		}
	case KindCodeExercise:
		if p.Instruction == "" || p.StarterCode == "" {
			return fmt.Errorf("code_exercise: instruction and starterCode are required")
		}
	case KindMindMap:
		if p.Root == nil || p.Root.Label == "" {
			return fmt.Errorf("mindmap: root node with label is required")
		}
	case KindFlashcards:
		if len(p.Cards) == 0 {
			return fmt.Errorf("flashcards: at least one card is required")
		}
		for i, c := range p.Cards {
			if c.Front == "" || c.Back == "" {
				return fmt.Errorf("flashcards: card %d needs front and back", i)
			}
		}
	case KindTimeline:
		if len(p.Events) == 0 {
			return fmt.Errorf("timeline: at least one event is required")
		}
	case KindComparison:
		if len(p.Columns) == 0 || len(p.Rows) == 0 {
			return fmt.Errorf("comparison: columns and rows are required")
		}
		for i, r := range p.Rows {
			if len(r.Cells) != len(p.Columns) {
				return fmt.Errorf("comparison: row %d has %d cells, want %d", i, len(r.Cells), len(p.Columns))
			}
		}
	case KindSummary:
		if p.Title == "" || len(p.Sections) == 0 {
			return fmt.Errorf("summary: title and sections are required")
		}
	case KindFillBlank:
		if len(p.Blanks) == 0 {
			return fmt.Errorf("fill_blank: at least one blank is required")
		}
		for i, b := range p.Blanks {
			if b.Text == "" || b.Answer == "" {
				return fmt.Errorf("fill_blank: blank %d needs text and answer", i)
			}
		}
	case KindApp:
		if p.Layout == nil {
			return fmt.Errorf("app: layout is required")
		}
		if err := validateAtom(p.Layout, 0); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	default:
		return fmt.Errorf("unknown payload type %q", p.Type)
	}
	return nil
}

func validateAtom(a *Atom, containerDepth int) error {
	switch a.Type {
	case AtomText, AtomCode:
		if a.Value == "" {
			return fmt.Errorf("%s atom needs a value", a.Type)
		}
	case AtomSlider, AtomSwitch:
		if err := ValidatePath(a.Bind); err != nil {
			return fmt.Errorf("%s atom bind: %w", a.Type, err)
		}
		if a.Type == AtomSlider && a.Max <= a.Min {
			return fmt.Errorf("slider atom needs max > min")
		}
	case AtomButton:
		if len(a.Actions) == 0 {
			return fmt.Errorf("button atom needs at least one action")
		}
		for i := range a.Actions {
			if err := a.Actions[i].Validate(); err != nil {
				return fmt.Errorf("button action %d: %w", i, err)
			}
		}
	case AtomStack, AtomCard:
		if containerDepth+1 > MaxContainerDepth {
			return fmt.Errorf("container nesting exceeds %d levels", MaxContainerDepth)
		}
		if len(a.Children) == 0 {
			return fmt.Errorf("%s atom needs children", a.Type)
		}
		for _, child := range a.Children {
			if err := validateAtom(child, containerDepth+1); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown atom type %q", a.Type)
	}
	return nil
}

// Fallback builds the safe explanation payload used whenever model
// output cannot be parsed or validated.
func Fallback(message string) *Payload {
	return &Payload{Type: KindExplanation, Markdown: message}
}
