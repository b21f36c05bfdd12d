package agent

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"poker-platform/internal/game"
)

// DefaultMaxAgents bounds how many agents a single Registry will hold.
const DefaultMaxAgents = 1000

// Registry dispatches decision requests across in-process, push, and
// pull agents behind one contract. Mirrors the table manager's
// mutex-guarded map over a single shared resource.
type Registry struct {
	mu             sync.RWMutex
	agents         map[string]*Registration
	pending        map[string]*PendingTurn
	maxAgents      int
	callbackClient httpClient

	nowFunc func() time.Time
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithMaxAgents overrides DefaultMaxAgents.
func WithMaxAgents(n int) Option {
	return func(r *Registry) { r.maxAgents = n }
}

// WithHTTPClient substitutes the outbound push transport, for tests.
func WithHTTPClient(c httpClient) Option {
	return func(r *Registry) { r.callbackClient = c }
}

// NewRegistry constructs an empty agent registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		agents:    make(map[string]*Registration),
		pending:   make(map[string]*PendingTurn),
		maxAgents: DefaultMaxAgents,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterAgent adds a push- or pull-mode agent and returns its opaque
// id. Callback mode requires callbackURL.
func (r *Registry) RegisterAgent(name string, mode Mode, callbackURL, walletAddress string, metadata map[string]string) (string, error) {
	if mode == ModeCallback && callbackURL == "" {
		return "", ErrCallbackURLNeeded
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.agents) >= r.maxAgents {
		return "", ErrMaxAgentsExceeded
	}

	id := uuid.NewString()
	r.agents[id] = &Registration{
		ID:            id,
		Name:          name,
		Mode:          mode,
		CallbackURL:   callbackURL,
		WalletAddress: walletAddress,
		Metadata:      metadata,
		createdAt:     r.nowFunc(),
	}
	return id, nil
}

// RegisterInternalAgent adds an in-process agent under an
// caller-supplied id.
func (r *Registry) RegisterInternalAgent(id, name string, decide Decider, walletAddress string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.agents) >= r.maxAgents {
		return ErrMaxAgentsExceeded
	}

	r.agents[id] = &Registration{
		ID:            id,
		Name:          name,
		Mode:          ModeInProcess,
		WalletAddress: walletAddress,
		decide:        decide,
		createdAt:     r.nowFunc(),
	}
	return nil
}

// BindPlayer associates an agent with the seat it is acting for.
func (r *Registry) BindPlayer(agentID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.agents[agentID]
	if !ok {
		return ErrUnknownAgent
	}
	reg.PlayerID = playerID
	return nil
}

// UnregisterAgent removes an agent. Idempotent; cancels any pending
// turn the agent was holding.
func (r *Registry) UnregisterAgent(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.agents, id)
	if pt, ok := r.pending[id]; ok {
		pt.submit(Decision{Action: game.ActionFold})
		delete(r.pending, id)
	}
}

// ListAgents returns a snapshot of every registered agent.
func (r *Registry) ListAgents() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.agents))
	for _, reg := range r.agents {
		out = append(out, snapshotOf(reg))
	}
	return out
}

// GetAgent looks up one agent by id.
func (r *Registry) GetAgent(id string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.agents[id]
	if !ok {
		return Snapshot{}, ErrUnknownAgent
	}
	return snapshotOf(reg), nil
}

// GetAgentByPlayerId finds the agent bound to playerID, if any.
func (r *Registry) GetAgentByPlayerId(playerID string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.agents {
		if reg.PlayerID == playerID {
			return snapshotOf(reg), nil
		}
	}
	return Snapshot{}, ErrUnknownAgent
}

func snapshotOf(reg *Registration) Snapshot {
	avg := float64(0)
	if reg.latencyCount > 0 {
		avg = float64(reg.totalLatencyMs) / float64(reg.latencyCount)
	}
	return Snapshot{
		ID:              reg.ID,
		Name:            reg.Name,
		Mode:            reg.Mode,
		CallbackURL:     reg.CallbackURL,
		WalletAddress:   reg.WalletAddress,
		PlayerID:        reg.PlayerID,
		AvgLatencyMs:    avg,
		DecisionsServed: reg.latencyCount,
	}
}

func (r *Registry) recordLatency(reg *Registration, ms int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.latencyCount == len(reg.latenciesMs) {
		reg.totalLatencyMs -= reg.latenciesMs[reg.latencyHead]
	} else {
		reg.latencyCount++
	}
	reg.latenciesMs[reg.latencyHead] = ms
	reg.totalLatencyMs += ms
	reg.latencyHead = (reg.latencyHead + 1) % len(reg.latenciesMs)
}

// defaultDecision is the table's own fallback (CHECK if legal, else
// FOLD), used when a transport never produces a response at all.
func defaultDecision(view game.PlayerView) Decision {
	for _, a := range view.ValidActions {
		if a == game.ActionCheck {
			return Decision{Action: game.ActionCheck}
		}
	}
	return Decision{Action: game.ActionFold}
}

// RequestDecision dispatches a single decision request for agentID
// and returns the validated, clamped result. It always returns a
// Decision; transport failures resolve to the table default action
// rather than propagating an error up to the table loop.
func (r *Registry) RequestDecision(ctx context.Context, agentID, playerID, tableID string, handNumber int64, view game.PlayerView, timeoutMs int64) Decision {
	r.mu.RLock()
	reg, ok := r.agents[agentID]
	r.mu.RUnlock()
	if !ok {
		return validateDecision(view, defaultDecision(view))
	}

	started := r.nowFunc()
	var raw Decision

	switch reg.Mode {
	case ModeInProcess:
		raw = r.requestInProcess(reg, view)
	case ModeCallback:
		raw = r.requestCallback(ctx, reg, tableID, handNumber, view, timeoutMs)
	case ModePolling:
		raw = r.requestPolling(reg, playerID, tableID, handNumber, view, timeoutMs)
	default:
		raw = defaultDecision(view)
	}

	r.recordLatency(reg, r.nowFunc().Sub(started).Milliseconds())
	return validateDecision(view, raw)
}

func (r *Registry) requestInProcess(reg *Registration, view game.PlayerView) (d Decision) {
	if reg.decide == nil {
		return defaultDecision(view)
	}
	defer func() {
		if recover() != nil {
			d = defaultDecision(view)
		}
	}()
	return reg.decide(view)
}

func (r *Registry) requestCallback(ctx context.Context, reg *Registration, tableID string, handNumber int64, view game.PlayerView, timeoutMs int64) Decision {
	if timeoutMs <= 0 {
		timeoutMs = DefaultCallbackTimeoutMs
	}
	p := newPusher(r.callbackClient, timeoutMs, DefaultCallbackRetries)
	d, err := p.push(ctx, reg.CallbackURL, reg, tableID, handNumber, view)
	if err != nil {
		return defaultDecision(view)
	}
	return d
}

func (r *Registry) requestPolling(reg *Registration, playerID, tableID string, handNumber int64, view game.PlayerView, timeoutMs int64) Decision {
	if timeoutMs <= 0 {
		timeoutMs = DefaultActionTimeoutMsFallback
	}
	pt := newPendingTurn(reg.ID, playerID, tableID, handNumber, view, timeoutMs, r.nowFunc())

	r.mu.Lock()
	r.pending[reg.ID] = pt
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if r.pending[reg.ID] == pt {
			delete(r.pending, reg.ID)
		}
		r.mu.Unlock()
	}()

	return pt.wait(defaultDecision(view))
}

// DefaultActionTimeoutMsFallback is used when a polling request omits
// a table-level timeout.
const DefaultActionTimeoutMsFallback = 30000

// ReadPending implements the polling read endpoint.
func (r *Registry) ReadPending(agentID string) (pt *PendingTurn, hasTurn bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pt, ok := r.pending[agentID]
	return pt, ok
}

// SubmitPending implements the polling write endpoint. Returns
// ErrNoPendingTurn, ErrAlreadySubmitted, or nil.
func (r *Registry) SubmitPending(agentID string, action string, amount int64, reasoning string) error {
	r.mu.RLock()
	pt, ok := r.pending[agentID]
	r.mu.RUnlock()
	if !ok {
		return ErrNoPendingTurn
	}

	d := Decision{Action: parseDecisionAction(action), Amount: amount, Reasoning: reasoning}
	if !pt.submit(d) {
		return ErrAlreadySubmitted
	}
	return nil
}
