// Package pipeline runs the three-stage answer flow for one question:
// retrieval produces grounding context, drafting produces a candidate answer
// from that context alone, and verification strips claims the context does
// not support. The stages run strictly in order; a failure at any stage
// aborts the whole run with no partial answer.
package pipeline

import (
	"context"
	"fmt"

	"github.com/paperchat/backend/internal/models"
)

// Retriever produces a single consolidated grounding text for a question.
// It must never answer the question itself.
type Retriever interface {
	Retrieve(ctx context.Context, question string, history []models.Turn) (string, error)
}

// Drafter produces a draft answer grounded only in the supplied context.
type Drafter interface {
	Draft(ctx context.Context, question, contextText string, history []models.Turn) (string, error)
}

// Verifier checks a draft against its context and returns the final answer
// with unsupported claims removed.
type Verifier interface {
	Verify(ctx context.Context, draft, contextText string) (string, error)
}

type state int

const (
	stateInit state = iota
	stateRetrieved
	stateDrafted
	stateVerified
	stateDone
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateRetrieved:
		return "retrieved"
	case stateDrafted:
		return "drafted"
	case stateVerified:
		return "verified"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// Result is what a completed run hands back: the verified answer and the
// context it was grounded in.
type Result struct {
	Answer  string
	Context string
}

// Orchestrator chains the three stages for one question at a time.
type Orchestrator struct {
	retriever Retriever
	drafter   Drafter
	verifier  Verifier
}

func NewOrchestrator(retriever Retriever, drafter Drafter, verifier Verifier) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		drafter:   drafter,
		verifier:  verifier,
	}
}

// run carries the per-question state through the stage transitions.
type run struct {
	state state
}

func (r *run) advance(next state) {
	r.state = next
}

// Run executes retrieval, drafting and verification in order. Any stage
// error terminates the run; no partial answer is ever returned.
func (o *Orchestrator) Run(ctx context.Context, question string, history []models.Turn) (Result, error) {
	r := &run{state: stateInit}

	contextText, err := o.retriever.Retrieve(ctx, question, history)
	if err != nil {
		return Result{}, fmt.Errorf("retrieval stage (from %s): %w", r.state, err)
	}
	r.advance(stateRetrieved)

	draft, err := o.drafter.Draft(ctx, question, contextText, history)
	if err != nil {
		return Result{}, fmt.Errorf("drafting stage (from %s): %w", r.state, err)
	}
	r.advance(stateDrafted)

	answer, err := o.verifier.Verify(ctx, draft, contextText)
	if err != nil {
		return Result{}, fmt.Errorf("verification stage (from %s): %w", r.state, err)
	}
	r.advance(stateVerified)

	r.advance(stateDone)
	return Result{Answer: answer, Context: contextText}, nil
}
