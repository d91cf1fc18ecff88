package orchestrator

import (
	"context"
	"time"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	"golang.org/x/sync/errgroup"
)

type AgentStatus struct {
	Available    bool                   `json:"available"`
	Name         string                 `json:"name,omitempty"`
	URL          string                 `json:"url"`
	Capabilities *a2a.AgentCapabilities `json:"capabilities,omitempty"`
	Error        string                 `json:"error,omitempty"`
	LastCheck    time.Time              `json:"lastCheck"`
}

type AgentsStatus struct {
	FlightAgent AgentStatus `json:"flightAgent"`
	HotelAgent  AgentStatus `json:"hotelAgent"`
}

// Status probes both agent cards concurrently. It never fails; an
// unreachable agent is reported as unavailable.
func (o *Orchestrator) Status(ctx context.Context) AgentsStatus {
	var out AgentsStatus
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.FlightAgent = o.probe(gctx, o.flight)
		return nil
	})
	g.Go(func() error {
		out.HotelAgent = o.probe(gctx, o.hotel)
		return nil
	})
	_ = g.Wait()
	return out
}

func (o *Orchestrator) probe(ctx context.Context, agent RemoteAgent) AgentStatus {
	ctx, cancel := context.WithTimeout(ctx, o.statusTimeout)
	defer cancel()

	st := AgentStatus{URL: agent.BaseURL()}
	card, err := agent.Card(ctx)
	st.LastCheck = o.now().UTC()
	if err != nil {
		st.Error = err.Error()
		return st
	}
	caps := card.Capabilities
	st.Available = true
	st.Name = card.Name
	st.Capabilities = &caps
	return st
}
