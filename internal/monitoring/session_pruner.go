package monitoring

import (
	"fmt"
	"time"

	"github.com/isdelr/inkwell-be/internal/auth"
	"github.com/isdelr/inkwell-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SessionPruner periodically sweeps expired sessions out of the token
// registry. Revoked sessions are removed immediately on logout; this only
// collects sessions that aged out without an explicit logout, so it is not
// started when sessions have no TTL.
type SessionPruner struct {
	registry *auth.Registry
	eventSvc services.EventServiceProvider
	schedule cron.Schedule
	done     chan bool
}

// NewSessionPruner creates a pruner driven by a standard cron expression
// (e.g. "@hourly" or "*/30 * * * *").
func NewSessionPruner(registry *auth.Registry, eventSvc services.EventServiceProvider, cronExpr string) (*SessionPruner, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", cronExpr, err)
	}
	return &SessionPruner{
		registry: registry,
		eventSvc: eventSvc,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the pruning loop. It blocks until Stop is called, so run it in
// its own goroutine.
func (p *SessionPruner) Run() {
	log.Info().Msg("Starting background session pruner...")

	// Run once immediately on start
	p.prune()

	for {
		next := p.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-p.done:
			timer.Stop()
			log.Info().Msg("Stopping background session pruner.")
			return
		case <-timer.C:
			p.prune()
		}
	}
}

// Stop halts the pruner.
func (p *SessionPruner) Stop() {
	p.done <- true
}

func (p *SessionPruner) prune() {
	removed, err := p.registry.PruneExpired()
	if err != nil {
		log.Error().Err(err).Msg("Session prune failed")
		return
	}
	if removed == 0 {
		return
	}
	log.Info().Int("removed", removed).Msg("Pruned expired sessions")
	if err := p.eventSvc.CreateEvent("session.prune", "info", fmt.Sprintf("Removed %d expired sessions.", removed), nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record prune event")
	}
}
