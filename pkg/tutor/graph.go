package tutor

import (
	"context"
	"fmt"
	"log"

	"ai-reading-tutor-be/pkg/genui"
	"ai-reading-tutor-be/pkg/llm"
	"ai-reading-tutor-be/pkg/retrieval"
	"ai-reading-tutor-be/pkg/stream"

	"github.com/google/uuid"
)

// Retriever is the narrow slice of the retrieval service the workflow
// consumes.
type Retriever interface {
	Search(ctx context.Context, req retrieval.SearchRequest) (*retrieval.SearchResult, error)
	Summaries(ctx context.Context, userId uuid.UUID, filter retrieval.Filter) ([]retrieval.Source, error)
}

// Workflow is the tutor state machine: supervisor, optional query
// rewrite, retrieval, then exactly one generation node. Node execution
// within a turn is strictly sequential; concurrent turns share nothing.
type Workflow struct {
	llm       llm.LLMProvider
	retriever Retriever
	logger    *log.Logger
}

type nodeFunc func(ctx context.Context, st *State) (Update, error)

// NewWorkflow wires the node set. logger is the isolated LLM/RAG trace
// log, never the request logger.
func NewWorkflow(provider llm.LLMProvider, retriever Retriever, logger *log.Logger) *Workflow {
	return &Workflow{
		llm:       provider,
		retriever: retriever,
		logger:    logger,
	}
}

// Run executes one turn: entry at the supervisor, conditional routing
// per the resolved policy, terminating at end or after exactly one
// generation node. Emits step events as it goes and the final event
// once the terminal payload is validated.
func (w *Workflow) Run(ctx context.Context, st *State) (*Final, error) {
	current := StepSupervisor

	for current != StepEnd {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stream.Emit(ctx, stream.EventStep, map[string]string{"node": string(current)})

		node, ok := w.node(current)
		if !ok {
			return nil, fmt.Errorf("workflow: no node for step %q", current)
		}
		upd, err := node(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("workflow: node %s: %w", current, err)
		}
		apply(st, upd)

		current = w.next(current, st)
	}

	if st.Final == nil {
		// nextStep=end straight from the supervisor: close the turn
		// with a short goodbye payload
		st.Final = &Final{
			UI:      genui.Fallback("Happy reading! Come back whenever you want to continue."),
			Sources: st.Sources,
		}
	}

	stream.Emit(ctx, stream.EventFinal, st.Final)
	return st.Final, nil
}

func (w *Workflow) node(step Step) (nodeFunc, bool) {
	switch step {
	case StepSupervisor:
		return w.supervisorNode, true
	case StepRewrite:
		return w.rewriteNode, true
	case StepRetrieve:
		return w.retrieverNode, true
	case StepExplain:
		return w.explainNode, true
	case StepAnswer:
		return w.answerNode, true
	case StepQuiz:
		return w.quizNode, true
	case StepCode:
		return w.codeNode, true
	case StepPlan:
		return w.planNode, true
	}
	return nil, false
}

// next is the transition function. Every path reaches either end or
// exactly one generation node, so termination is structural.
func (w *Workflow) next(current Step, st *State) Step {
	switch current {
	case StepSupervisor:
		if st.NextStep == StepEnd {
			return StepEnd
		}
		if st.Policy == nil || !st.Policy.Enabled {
			return st.NextStep
		}
		if st.Policy.RewriteQuery && len(st.Messages) > 0 {
			return StepRewrite
		}
		return StepRetrieve

	case StepRewrite:
		return StepRetrieve

	case StepRetrieve:
		return st.NextStep

	default:
		// generation nodes are terminal
		return StepEnd
	}
}
