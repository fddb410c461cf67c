package handlers

import (
	"github.com/paperchat/backend/internal/pipeline"
	"github.com/paperchat/backend/internal/store"
)

// handler is the core struct with all dependencies
type handler struct {
	store        store.Store
	orchestrator *pipeline.Orchestrator
}

// NewHandler creates a new handler instance
func NewHandler(store store.Store, orchestrator *pipeline.Orchestrator) *handler {
	return &handler{
		store:        store,
		orchestrator: orchestrator,
	}
}
