package memory

import (
	"context"
	"sync"

	domain "github.com/revcart/fulfillment/internal/domain/agent"
)

// AgentDirectory keeps registration order so ListActive enumerates agents
// deterministically; the allocator's first-wins tie-break relies on that.
type AgentDirectory struct {
	mu     sync.RWMutex
	agents map[string]*domain.Agent
	order  []string
}

func NewAgentDirectory() *AgentDirectory {
	return &AgentDirectory{
		agents: make(map[string]*domain.Agent),
	}
}

func (d *AgentDirectory) Put(ctx context.Context, agent *domain.Agent) error {
	_ = ctx
	if agent == nil || agent.ID == "" {
		return domain.ErrNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.agents[agent.ID]; !exists {
		d.order = append(d.order, agent.ID)
	}
	clone := *agent
	d.agents[agent.ID] = &clone
	return nil
}

func (d *AgentDirectory) Get(ctx context.Context, id string) (*domain.Agent, error) {
	_ = ctx

	d.mu.RLock()
	defer d.mu.RUnlock()

	agent, ok := d.agents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *agent
	return &clone, nil
}

func (d *AgentDirectory) ListActive(ctx context.Context) ([]*domain.Agent, error) {
	_ = ctx

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*domain.Agent
	for _, id := range d.order {
		agent := d.agents[id]
		if agent == nil || !agent.Active {
			continue
		}
		clone := *agent
		out = append(out, &clone)
	}
	return out, nil
}
