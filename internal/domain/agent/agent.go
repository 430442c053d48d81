package agent

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("agent: not found")

// Agent is a delivery-agent account. Identity and role management live
// outside this service; only the active roster matters here.
type Agent struct {
	ID     string
	Name   string
	Active bool
}

// Directory enumerates delivery-agent accounts. ListActive returns agents in
// a stable order; the allocator's tie-break depends on it.
type Directory interface {
	Get(ctx context.Context, id string) (*Agent, error)
	ListActive(ctx context.Context) ([]*Agent, error)
}
