package tutor

import (
	"testing"

	"ai-reading-tutor-be/pkg/genui"
	"ai-reading-tutor-be/pkg/retrieval"
)

func TestApplyMergeSemantics(t *testing.T) {
	st := &State{Query: "original"}

	// Nil fields keep old values
	apply(st, Update{})
	if st.Query != "original" {
		t.Errorf("nil update must not touch query, got %q", st.Query)
	}

	// Last write wins
	apply(st, Update{Query: strPtr("first")})
	apply(st, Update{Query: strPtr("second")})
	if st.Query != "second" {
		t.Errorf("query = %q, want last write", st.Query)
	}

	// Messages append
	apply(st, Update{Messages: []Message{{Role: "user", Content: "a"}}})
	apply(st, Update{Messages: []Message{{Role: "assistant", Content: "b"}}})
	if len(st.Messages) != 2 {
		t.Errorf("messages should append, got %d", len(st.Messages))
	}

	// Sources replace wholesale, including with empty
	apply(st, Update{Sources: []retrieval.Source{{Title: "x"}}, SetSources: true})
	apply(st, Update{Sources: []retrieval.Source{}, SetSources: true})
	if len(st.Sources) != 0 {
		t.Errorf("sources should be replaced wholesale, got %d", len(st.Sources))
	}
}

func TestApplyFinalIsWriteOnce(t *testing.T) {
	st := &State{}
	first := &Final{UI: genui.Fallback("first")}
	second := &Final{UI: genui.Fallback("second")}

	apply(st, Update{Final: first})
	apply(st, Update{Final: second})

	if st.Final != first {
		t.Error("final must be write-once")
	}
}

func TestApplyIsIdempotentForSameUpdate(t *testing.T) {
	upd := Update{
		Query:      strPtr("q"),
		NextStep:   stepPtr(StepQuiz),
		Sources:    []retrieval.Source{{Title: "s"}},
		SetSources: true,
	}

	st := &State{}
	apply(st, upd)
	snapshot := *st
	apply(st, upd)

	if st.Query != snapshot.Query || st.NextStep != snapshot.NextStep || len(st.Sources) != len(snapshot.Sources) {
		t.Error("re-applying the same non-appending update must not change the state")
	}
}
