package inmemory

import "sync"

type Snapshot struct {
	RoutedTotal       uint64            `json:"routed_total"`
	RoutedByHandler   map[string]uint64 `json:"routed_by_handler"`
	ActionsCreated    map[string]uint64 `json:"actions_created_by_kind"`
	ActionsResolved   map[string]uint64 `json:"actions_resolved_by_outcome"`
	ExecutionFailures uint64            `json:"execution_failures"`
}

type Recorder struct {
	mu                sync.Mutex
	routedByHandler   map[string]uint64
	actionsCreated    map[string]uint64
	actionsResolved   map[string]uint64
	executionFailures uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		routedByHandler: map[string]uint64{},
		actionsCreated:  map[string]uint64{},
		actionsResolved: map[string]uint64{},
	}
}

func (r *Recorder) RecordRouted(handler string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routedByHandler[handler]++
}

func (r *Recorder) RecordActionCreated(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actionsCreated[kind]++
}

func (r *Recorder) RecordActionResolved(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actionsResolved[outcome]++
}

func (r *Recorder) RecordExecutionFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executionFailures++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		RoutedByHandler:   make(map[string]uint64, len(r.routedByHandler)),
		ActionsCreated:    make(map[string]uint64, len(r.actionsCreated)),
		ActionsResolved:   make(map[string]uint64, len(r.actionsResolved)),
		ExecutionFailures: r.executionFailures,
	}
	for k, v := range r.routedByHandler {
		out.RoutedByHandler[k] = v
		out.RoutedTotal += v
	}
	for k, v := range r.actionsCreated {
		out.ActionsCreated[k] = v
	}
	for k, v := range r.actionsResolved {
		out.ActionsResolved[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
