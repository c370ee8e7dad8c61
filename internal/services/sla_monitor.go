package services

import (
	"context"
	"sync"
	"time"

	"github.com/complaintdesk/backend/internal/events"
	"github.com/complaintdesk/backend/internal/models"
	"github.com/complaintdesk/backend/internal/repository"
	"go.uber.org/zap"
)

// SLAMonitor periodically reports open complaints that have passed the SLA
// deadline of their complaint type.
type SLAMonitor interface {
	Start(ctx context.Context)
	Stop()
	CheckSLABreaches(ctx context.Context) ([]models.Complaint, error)
}

type slaMonitor struct {
	repo      repository.ComplaintRepository
	publisher events.Publisher
	log       *zap.Logger
	interval  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	running   bool
	stopChan  chan struct{}
	lastCheck time.Time
}

func NewSLAMonitor(repo repository.ComplaintRepository, publisher events.Publisher, log *zap.Logger, checkInterval time.Duration) SLAMonitor {
	if checkInterval == 0 {
		checkInterval = 5 * time.Minute
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &slaMonitor{
		repo:      repo,
		publisher: publisher,
		log:       log,
		interval:  checkInterval,
		now:       time.Now,
	}
}

func (m *slaMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})
	stop := m.stopChan

	m.log.Info("SLA monitor started", zap.Duration("interval", m.interval))

	go func() {
		if _, err := m.CheckSLABreaches(ctx); err != nil {
			m.log.Warn("Initial SLA check failed", zap.Error(err))
		}

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := m.CheckSLABreaches(ctx); err != nil {
					m.log.Warn("SLA check failed", zap.Error(err))
				}
			case <-stop:
				m.log.Info("SLA monitor stopped")
				return
			case <-ctx.Done():
				m.log.Info("SLA monitor context cancelled")
				return
			}
		}
	}()
}

func (m *slaMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stopChan)
}

// CheckSLABreaches returns the complaints whose deadline fell after the
// previous check and at or before now, publishing an event for each. The
// first check reports every overdue complaint.
func (m *slaMonitor) CheckSLABreaches(ctx context.Context) ([]models.Complaint, error) {
	now := m.now()

	m.mu.Lock()
	since := m.lastCheck
	m.mu.Unlock()

	open, err := m.repo.FindOpenWithSLA(ctx)
	if err != nil {
		return nil, err
	}

	var breached []models.Complaint
	for i := range open {
		deadline, ok := open[i].SLADeadline()
		if !ok || deadline.After(now) || !deadline.After(since) {
			continue
		}
		breached = append(breached, open[i])
	}

	for i := range breached {
		c := &breached[i]
		event := events.ComplaintEvent{
			Type:        events.ComplaintSLABreached,
			ComplaintID: c.ID,
			CRN:         c.CRN,
			ActorID:     models.SystemActorID,
			OccurredAt:  now,
		}
		if c.Status != nil {
			event.Status = c.Status.Name
		}
		if err := m.publisher.Publish(ctx, event); err != nil {
			m.log.Warn("Failed to publish SLA breach",
				zap.String("crn", c.CRN),
				zap.Error(err),
			)
		}
	}

	m.mu.Lock()
	m.lastCheck = now
	m.mu.Unlock()

	if len(breached) > 0 {
		m.log.Info("SLA breaches detected", zap.Int("count", len(breached)))
	}
	return breached, nil
}
