package tutor

import (
	"ai-reading-tutor-be/pkg/genui"
	"ai-reading-tutor-be/pkg/retrieval"

	"github.com/google/uuid"
)

// Mode is the interaction mode requested by the caller.
type Mode string

const (
	ModeQA      Mode = "qa"
	ModeTutor   Mode = "tutor"
	ModeCopilot Mode = "copilot"
)

// Step names the workflow nodes. These are the states of the turn's
// state machine.
type Step string

const (
	StepSupervisor Step = "supervisor"
	StepRewrite    Step = "rewrite"
	StepRetrieve   Step = "retrieve"
	StepExplain    Step = "explain"
	StepQuiz       Step = "quiz"
	StepCode       Step = "code"
	StepPlan       Step = "plan"
	StepAnswer     Step = "answer"
	StepEnd        Step = "end"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReaderContext is what the user currently has on screen.
type ReaderContext struct {
	Selection      string `json:"selection,omitempty"`
	CurrentContent string `json:"currentContent,omitempty"`
}

// Empty reports whether no inline context was supplied.
func (r *ReaderContext) Empty() bool {
	return r == nil || (r.Selection == "" && r.CurrentContent == "")
}

// SuggestedAction is a confidence-graded follow-up offered to the user.
type SuggestedAction struct {
	Label      string  `json:"label"`
	Prompt     string  `json:"prompt"`
	Confidence float64 `json:"confidence"`
}

// Final is the terminal response of one turn. It is set by exactly one
// generation node and never mutated afterward.
type Final struct {
	UI               *genui.Payload     `json:"ui"`
	Sources          []retrieval.Source `json:"sources"`
	SuggestedActions []SuggestedAction  `json:"suggestedActions"`
}

// State is the shared record threaded through every node of one
// invocation. Created at invocation start, discarded at the stream's
// done event.
type State struct {
	Messages     []Message
	UserMessage  string
	UserId       uuid.UUID
	ArticleIds   []uuid.UUID
	CollectionId *uuid.UUID
	CurrentTopic string
	MasteryLevel int
	Mode         Mode
	Reader       *ReaderContext

	Query     string
	Policy    *RetrievalPolicy
	Documents string
	Sources   []retrieval.Source
	NextStep  Step
	Reasoning string
	UIHint    string
	Final     *Final
}

// Update is a node's partial output. Nil fields keep the old value
// (last write wins); Messages are appended; Sources and Documents are
// replaced wholesale when set.
type Update struct {
	Messages     []Message
	Query        *string
	Policy       *RetrievalPolicy
	Documents    *string
	Sources      []retrieval.Source
	SetSources   bool
	NextStep     *Step
	Reasoning    *string
	CurrentTopic *string
	UIHint       *string
	Final        *Final
}

// apply merges a node's update into the state with per-field reducer
// semantics.
func apply(st *State, upd Update) {
	if len(upd.Messages) > 0 {
		st.Messages = append(st.Messages, upd.Messages...)
	}
	if upd.Query != nil {
		st.Query = *upd.Query
	}
	if upd.Policy != nil {
		st.Policy = upd.Policy
	}
	if upd.Documents != nil {
		st.Documents = *upd.Documents
	}
	if upd.SetSources {
		st.Sources = upd.Sources
	}
	if upd.NextStep != nil {
		st.NextStep = *upd.NextStep
	}
	if upd.Reasoning != nil {
		st.Reasoning = *upd.Reasoning
	}
	if upd.CurrentTopic != nil {
		st.CurrentTopic = *upd.CurrentTopic
	}
	if upd.UIHint != nil {
		st.UIHint = *upd.UIHint
	}
	// Final is write-once; a second write is a bug upstream and is
	// ignored here to keep the invariant
	if upd.Final != nil && st.Final == nil {
		st.Final = upd.Final
	}
}

func stepPtr(s Step) *Step    { return &s }
func strPtr(s string) *string { return &s }
