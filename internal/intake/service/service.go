// Package service orchestrates the intake pipeline: archiving, event
// publication, metrics, and the waiting queue drain loop sit here, on
// top of the pure routing logic in the domain package.
package service

import (
	"context"
	"errors"
	"strings"

	"leadintake_backend/internal/events"
	"leadintake_backend/internal/intake/archive"
	"leadintake_backend/internal/intake/domain"
	"leadintake_backend/internal/intake/repository"
	"leadintake_backend/platform/apperr"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/metrics"

	"github.com/google/uuid"
)

// maxDrainBatch bounds one drain run so a deep queue cannot hold a
// worker forever. Remaining rows are picked up by the next run.
const maxDrainBatch = 100

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Pipeline runs one submission through the intake pipeline.
type Pipeline interface {
	Process(ctx context.Context, sub domain.Submission) (*domain.Outcome, error)
}

// Store is the persistence surface for lead queries and queue draining.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.StoredLead, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.StoredLead, error)
	ListLeads(ctx context.Context, limit, offset int) ([]domain.StoredLead, error)
	ListWaiting(ctx context.Context, limit int) ([]domain.WaitingLead, error)
	CountWaiting(ctx context.Context) (int, error)
	ClaimOldestWaiting(ctx context.Context) (*domain.WaitingLead, error)
	SaveToWaitingQueue(ctx context.Context, sub domain.Submission) error
	ListLeadActivity(ctx context.Context, leadID uuid.UUID) ([]repository.Activity, error)
}

// Service provides the intake application layer.
type Service struct {
	pipeline Pipeline
	store    Store
	archiver archive.Archiver
	bus      events.Bus
	log      *logger.Logger
}

func New(pipeline Pipeline, store Store, archiver archive.Archiver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		pipeline: pipeline,
		store:    store,
		archiver: archiver,
		bus:      bus,
		log:      log,
	}
}

// Submit archives the raw payload, runs the submission through the
// pipeline, and publishes the outcome. Archive failures never block
// intake; pipeline errors are returned to the caller unchanged.
func (s *Service) Submit(ctx context.Context, sub domain.Submission, rawPayload []byte) (*domain.Outcome, error) {
	log := s.log.WithContext(ctx)

	if len(rawPayload) > 0 {
		if err := s.archiver.Archive(ctx, sub.Source, rawPayload); err != nil {
			log.Warn("failed to archive raw submission", "error", err, "source", sub.Source)
		}
	}

	outcome, err := s.pipeline.Process(ctx, sub)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			metrics.ValidationFailuresTotal.WithLabelValues(validationReason(vErr)).Inc()
			log.Info("submission rejected", "reason", vErr.Error(), "source", sub.Source)
		}
		return nil, err
	}

	s.recordOutcome(ctx, sub, outcome)
	return outcome, nil
}

// recordOutcome publishes the domain events and counters for one
// completed pipeline pass.
func (s *Service) recordOutcome(ctx context.Context, sub domain.Submission, outcome *domain.Outcome) {
	metrics.SubmissionsTotal.WithLabelValues(string(outcome.Kind), sub.Source).Inc()

	log := s.log.WithContext(ctx)

	switch outcome.Kind {
	case domain.OutcomeUpdated:
		s.bus.Publish(ctx, events.LeadUpdated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    outcome.Lead.ID,
			Source:    sub.Source,
		})
		log.IntakeOutcome(sub.Source, string(outcome.Kind), outcome.Lead.ID.String(), "")

	case domain.OutcomeQueued:
		s.bus.Publish(ctx, events.LeadQueued{
			BaseEvent: events.NewBaseEvent(),
			Name:      sub.Name,
			Email:     sub.Email,
			Phone:     sub.Phone,
			Location:  sub.Location,
			Source:    sub.Source,
		})
		log.IntakeOutcome(sub.Source, string(outcome.Kind), "", "")

	case domain.OutcomeAssigned:
		lead := outcome.Lead
		s.bus.Publish(ctx, events.LeadCreated{
			BaseEvent:       events.NewBaseEvent(),
			LeadID:          lead.ID,
			Name:            lead.Name,
			Email:           lead.Email,
			Phone:           lead.Phone,
			Location:        lead.Location,
			Region:          lead.Region,
			Source:          lead.Source,
			AssignedAgentID: lead.AssignedAgentID,
		})

		var agentID uuid.UUID
		if lead.AssignedAgentID != nil {
			agentID = *lead.AssignedAgentID
		}
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			LeadName:     lead.Name,
			LeadEmail:    lead.Email,
			LeadPhone:    lead.Phone,
			LeadLocation: lead.Location,
			AgentID:      agentID,
			AgentName:    outcome.AssignedTo,
		})
		log.IntakeOutcome(sub.Source, string(outcome.Kind), lead.ID.String(), agentID.String())
	}
}

func validationReason(err *domain.ValidationError) string {
	msg := err.Messages["error"]
	switch {
	case strings.Contains(msg, "must have"):
		return "missing_contact"
	case strings.Contains(msg, "format"):
		return "invalid_format"
	default:
		return "other"
	}
}

// DrainResult summarizes one waiting queue drain run.
type DrainResult struct {
	Assigned int `json:"assigned"`
	Updated  int `json:"updated"`
	Dropped  int `json:"dropped"`
	Requeued int `json:"requeued"`
}

// DrainWaitingQueue replays queued leads through the pipeline until the
// queue is empty, an agent shortage puts a lead back, or the batch limit
// is reached. Queued rows passed intake validation already, so a
// validation failure here means the rules changed; such rows are dropped
// because they can never succeed.
func (s *Service) DrainWaitingQueue(ctx context.Context) (DrainResult, error) {
	var res DrainResult

	for i := 0; i < maxDrainBatch; i++ {
		claimed, err := s.store.ClaimOldestWaiting(ctx)
		if err != nil {
			metrics.QueueDrainsTotal.WithLabelValues("error").Inc()
			return res, err
		}
		if claimed == nil {
			break
		}

		sub := claimed.Submission()
		outcome, err := s.pipeline.Process(ctx, sub)
		if err != nil {
			var vErr *domain.ValidationError
			if errors.As(err, &vErr) {
				s.log.Warn("dropping waiting lead that no longer validates", "name", claimed.Name, "reason", vErr.Error())
				res.Dropped++
				continue
			}

			// The claimed row was already deleted; put it back so the
			// lead survives the failure.
			if qErr := s.store.SaveToWaitingQueue(ctx, sub); qErr != nil {
				s.log.Error("failed to requeue waiting lead after pipeline error", "error", qErr, "name", claimed.Name)
			}
			metrics.QueueDrainsTotal.WithLabelValues("error").Inc()
			return res, err
		}

		switch outcome.Kind {
		case domain.OutcomeAssigned:
			res.Assigned++
			s.recordOutcome(ctx, sub, outcome)
		case domain.OutcomeUpdated:
			res.Updated++
			s.recordOutcome(ctx, sub, outcome)
		case domain.OutcomeQueued:
			// No agent took it and the pipeline parked it again; the
			// rest of the queue would hit the same wall.
			res.Requeued++
			metrics.QueueDrainsTotal.WithLabelValues("no_agents").Inc()
			s.log.Info("queue drain stopped, no agents available",
				"assigned", res.Assigned, "updated", res.Updated)
			return res, nil
		}
	}

	metrics.QueueDrainsTotal.WithLabelValues("completed").Inc()
	s.log.Info("queue drain completed",
		"assigned", res.Assigned, "updated", res.Updated, "dropped", res.Dropped)
	return res, nil
}

func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (domain.StoredLead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.StoredLead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

// CheckDuplicate reports whether a submission with this contact info
// would update an existing lead instead of creating one. Returns nil
// when no lead matches.
func (s *Service) CheckDuplicate(ctx context.Context, email, phone string) (*domain.StoredLead, error) {
	if email == "" && phone == "" {
		return nil, apperr.Validation("email or phone is required")
	}
	return s.store.FindByEmailOrPhone(ctx, email, phone)
}

func (s *Service) ListLeads(ctx context.Context, limit, offset int) ([]domain.StoredLead, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListLeads(ctx, limit, offset)
}

func (s *Service) ListWaiting(ctx context.Context, limit int) ([]domain.WaitingLead, int, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	waiting, err := s.store.ListWaiting(ctx, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.store.CountWaiting(ctx)
	if err != nil {
		return nil, 0, err
	}

	return waiting, total, nil
}

func (s *Service) LeadActivity(ctx context.Context, leadID uuid.UUID) ([]repository.Activity, error) {
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	return s.store.ListLeadActivity(ctx, leadID)
}
