package service

import (
	"context"
	"errors"
	"testing"

	"leadintake_backend/internal/events"
	"leadintake_backend/internal/intake/domain"
	"leadintake_backend/internal/intake/repository"
	"leadintake_backend/platform/apperr"
	"leadintake_backend/platform/logger"

	"github.com/google/uuid"
)

type pipelineResult struct {
	outcome *domain.Outcome
	err     error
}

type fakePipeline struct {
	script []pipelineResult
	subs   []domain.Submission
}

func (f *fakePipeline) Process(_ context.Context, sub domain.Submission) (*domain.Outcome, error) {
	f.subs = append(f.subs, sub)
	if len(f.script) == 0 {
		return &domain.Outcome{Kind: domain.OutcomeQueued, Message: domain.MessageLeadQueued}, nil
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.outcome, next.err
}

type fakeStore struct {
	queue  []domain.WaitingLead
	claims int
	saved  []domain.Submission

	lead   domain.StoredLead
	dup    *domain.StoredLead
	getErr error
}

func (f *fakeStore) GetByID(_ context.Context, _ uuid.UUID) (domain.StoredLead, error) {
	return f.lead, f.getErr
}

func (f *fakeStore) FindByEmailOrPhone(_ context.Context, _, _ string) (*domain.StoredLead, error) {
	return f.dup, nil
}

func (f *fakeStore) ListLeads(_ context.Context, _, _ int) ([]domain.StoredLead, error) {
	return nil, nil
}

func (f *fakeStore) ListWaiting(_ context.Context, _ int) ([]domain.WaitingLead, error) {
	return f.queue, nil
}

func (f *fakeStore) CountWaiting(_ context.Context) (int, error) {
	return len(f.queue), nil
}

func (f *fakeStore) ClaimOldestWaiting(_ context.Context) (*domain.WaitingLead, error) {
	f.claims++
	if len(f.queue) == 0 {
		return nil, nil
	}
	claimed := f.queue[0]
	f.queue = f.queue[1:]
	return &claimed, nil
}

func (f *fakeStore) SaveToWaitingQueue(_ context.Context, sub domain.Submission) error {
	f.saved = append(f.saved, sub)
	return nil
}

func (f *fakeStore) ListLeadActivity(_ context.Context, _ uuid.UUID) ([]repository.Activity, error) {
	return nil, nil
}

type fakeArchiver struct {
	calls      int
	lastSource string
	lastBody   []byte
	err        error
}

func (f *fakeArchiver) Archive(_ context.Context, source string, payload []byte) error {
	f.calls++
	f.lastSource = source
	f.lastBody = payload
	return f.err
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) byName(name string) []events.Event {
	var out []events.Event
	for _, e := range b.published {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(pipeline *fakePipeline, store *fakeStore, arch *fakeArchiver, bus *recordingBus) *Service {
	return New(pipeline, store, arch, bus, logger.New("development"))
}

func assignedOutcome(lead domain.StoredLead, agentName string) *domain.Outcome {
	return &domain.Outcome{
		Kind:       domain.OutcomeAssigned,
		Message:    domain.MessageLeadAssigned,
		AssignedTo: agentName,
		Lead:       &lead,
	}
}

func TestSubmitArchivesAndPublishesAssignment(t *testing.T) {
	agentID := uuid.New()
	lead := domain.StoredLead{
		ID:              uuid.New(),
		Name:            "John",
		Email:           "test@example.com",
		Phone:           "+1234567890",
		Source:          "webform",
		AssignedAgentID: &agentID,
	}
	pipeline := &fakePipeline{script: []pipelineResult{{outcome: assignedOutcome(lead, "Alice")}}}
	arch := &fakeArchiver{}
	bus := &recordingBus{}
	svc := newTestService(pipeline, &fakeStore{}, arch, bus)

	sub := domain.Submission{Name: "John", Email: "test@example.com", Phone: "+1234567890", Source: "webform"}
	payload := []byte(`{"name":"John"}`)

	outcome, err := svc.Submit(context.Background(), sub, payload)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Kind != domain.OutcomeAssigned || outcome.AssignedTo != "Alice" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	if arch.calls != 1 || arch.lastSource != "webform" || string(arch.lastBody) != string(payload) {
		t.Errorf("archive call = %d source=%q body=%q", arch.calls, arch.lastSource, arch.lastBody)
	}

	created := bus.byName(events.LeadCreated{}.EventName())
	if len(created) != 1 {
		t.Fatalf("LeadCreated events = %d, want 1", len(created))
	}
	assigned := bus.byName(events.LeadAssigned{}.EventName())
	if len(assigned) != 1 {
		t.Fatalf("LeadAssigned events = %d, want 1", len(assigned))
	}
	e := assigned[0].(events.LeadAssigned)
	if e.LeadID != lead.ID || e.AgentID != agentID || e.AgentName != "Alice" {
		t.Errorf("LeadAssigned = %+v", e)
	}
	if e.LeadName != "John" || e.LeadEmail != "test@example.com" {
		t.Errorf("LeadAssigned lead details = %+v", e)
	}
}

func TestSubmitContinuesWhenArchiveFails(t *testing.T) {
	pipeline := &fakePipeline{script: []pipelineResult{{outcome: &domain.Outcome{Kind: domain.OutcomeQueued, Message: domain.MessageLeadQueued}}}}
	arch := &fakeArchiver{err: errors.New("bucket unavailable")}
	svc := newTestService(pipeline, &fakeStore{}, arch, &recordingBus{})

	outcome, err := svc.Submit(context.Background(), domain.Submission{Source: "webform"}, []byte("{}"))
	if err != nil {
		t.Fatalf("Submit returned %v, want nil", err)
	}
	if outcome.Kind != domain.OutcomeQueued {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(pipeline.subs) != 1 {
		t.Error("pipeline was not invoked after archive failure")
	}
}

func TestSubmitValidationFailurePublishesNothing(t *testing.T) {
	vErr := &domain.ValidationError{Messages: map[string]string{"error": "Invalid email or phone format"}}
	pipeline := &fakePipeline{script: []pipelineResult{{err: vErr}}}
	bus := &recordingBus{}
	svc := newTestService(pipeline, &fakeStore{}, &fakeArchiver{}, bus)

	_, err := svc.Submit(context.Background(), domain.Submission{Source: "webform"}, nil)

	var got *domain.ValidationError
	if !errors.As(err, &got) {
		t.Fatalf("Submit error = %v, want validation error", err)
	}
	if len(bus.published) != 0 {
		t.Errorf("published %d events for a rejected submission", len(bus.published))
	}
}

func TestSubmitPublishesUpdateAndQueueEvents(t *testing.T) {
	leadID := uuid.New()

	t.Run("updated", func(t *testing.T) {
		outcome := &domain.Outcome{
			Kind:    domain.OutcomeUpdated,
			Message: domain.MessageLeadUpdated,
			Lead:    &domain.StoredLead{ID: leadID},
		}
		bus := &recordingBus{}
		svc := newTestService(&fakePipeline{script: []pipelineResult{{outcome: outcome}}}, &fakeStore{}, &fakeArchiver{}, bus)

		if _, err := svc.Submit(context.Background(), domain.Submission{Source: "webform"}, nil); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		updated := bus.byName(events.LeadUpdated{}.EventName())
		if len(updated) != 1 {
			t.Fatalf("LeadUpdated events = %d, want 1", len(updated))
		}
		if e := updated[0].(events.LeadUpdated); e.LeadID != leadID {
			t.Errorf("LeadUpdated.LeadID = %s, want %s", e.LeadID, leadID)
		}
	})

	t.Run("queued", func(t *testing.T) {
		outcome := &domain.Outcome{Kind: domain.OutcomeQueued, Message: domain.MessageLeadQueued}
		bus := &recordingBus{}
		svc := newTestService(&fakePipeline{script: []pipelineResult{{outcome: outcome}}}, &fakeStore{}, &fakeArchiver{}, bus)

		sub := domain.Submission{Name: "John", Email: "test@example.com", Phone: "+1234567890", Source: "webform"}
		if _, err := svc.Submit(context.Background(), sub, nil); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		queued := bus.byName(events.LeadQueued{}.EventName())
		if len(queued) != 1 {
			t.Fatalf("LeadQueued events = %d, want 1", len(queued))
		}
		if e := queued[0].(events.LeadQueued); e.Name != "John" || e.Source != "webform" {
			t.Errorf("LeadQueued = %+v", e)
		}
	})
}

func waitingLead(name string) domain.WaitingLead {
	return domain.WaitingLead{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@example.com",
		Phone: "+1234567890",
	}
}

func TestDrainAssignsUntilQueueEmpty(t *testing.T) {
	agentID := uuid.New()
	lead := domain.StoredLead{ID: uuid.New(), Name: "queued", AssignedAgentID: &agentID}
	pipeline := &fakePipeline{script: []pipelineResult{
		{outcome: assignedOutcome(lead, "Alice")},
		{outcome: assignedOutcome(lead, "Alice")},
	}}
	store := &fakeStore{queue: []domain.WaitingLead{waitingLead("first"), waitingLead("second")}}
	bus := &recordingBus{}
	svc := newTestService(pipeline, store, &fakeArchiver{}, bus)

	res, err := svc.DrainWaitingQueue(context.Background())
	if err != nil {
		t.Fatalf("DrainWaitingQueue: %v", err)
	}
	if res.Assigned != 2 {
		t.Errorf("Assigned = %d, want 2", res.Assigned)
	}
	if len(store.queue) != 0 {
		t.Errorf("queue still holds %d rows", len(store.queue))
	}
	// Two claims for the rows plus one that found the queue empty.
	if store.claims != 3 {
		t.Errorf("claims = %d, want 3", store.claims)
	}
	if got := len(bus.byName(events.LeadAssigned{}.EventName())); got != 2 {
		t.Errorf("LeadAssigned events = %d, want 2", got)
	}
	if pipeline.subs[0].Name != "first" || pipeline.subs[1].Name != "second" {
		t.Errorf("drain order = %q, %q", pipeline.subs[0].Name, pipeline.subs[1].Name)
	}
}

func TestDrainStopsWhenNoAgentsLeft(t *testing.T) {
	pipeline := &fakePipeline{script: []pipelineResult{
		{outcome: &domain.Outcome{Kind: domain.OutcomeQueued, Message: domain.MessageLeadQueued}},
	}}
	store := &fakeStore{queue: []domain.WaitingLead{waitingLead("first"), waitingLead("second")}}
	svc := newTestService(pipeline, store, &fakeArchiver{}, &recordingBus{})

	res, err := svc.DrainWaitingQueue(context.Background())
	if err != nil {
		t.Fatalf("DrainWaitingQueue: %v", err)
	}
	if res.Requeued != 1 {
		t.Errorf("Requeued = %d, want 1", res.Requeued)
	}
	if store.claims != 1 {
		t.Errorf("claims = %d, want 1; the drain must stop at the first wall", store.claims)
	}
	if len(store.queue) != 1 {
		t.Errorf("queue rows left = %d, want 1", len(store.queue))
	}
}

func TestDrainRequeuesClaimedLeadOnPipelineError(t *testing.T) {
	wantErr := errors.New("connection reset")
	pipeline := &fakePipeline{script: []pipelineResult{{err: wantErr}}}
	store := &fakeStore{queue: []domain.WaitingLead{waitingLead("first")}}
	svc := newTestService(pipeline, store, &fakeArchiver{}, &recordingBus{})

	_, err := svc.DrainWaitingQueue(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("DrainWaitingQueue error = %v, want %v", err, wantErr)
	}
	if len(store.saved) != 1 || store.saved[0].Name != "first" {
		t.Fatalf("claimed lead was not requeued: %+v", store.saved)
	}
}

func TestDrainDropsRowsThatNoLongerValidate(t *testing.T) {
	agentID := uuid.New()
	lead := domain.StoredLead{ID: uuid.New(), AssignedAgentID: &agentID}
	pipeline := &fakePipeline{script: []pipelineResult{
		{err: &domain.ValidationError{Messages: map[string]string{"error": "Invalid email or phone format"}}},
		{outcome: assignedOutcome(lead, "Alice")},
	}}
	store := &fakeStore{queue: []domain.WaitingLead{waitingLead("stale"), waitingLead("good")}}
	svc := newTestService(pipeline, store, &fakeArchiver{}, &recordingBus{})

	res, err := svc.DrainWaitingQueue(context.Background())
	if err != nil {
		t.Fatalf("DrainWaitingQueue: %v", err)
	}
	if res.Dropped != 1 || res.Assigned != 1 {
		t.Errorf("result = %+v, want 1 dropped and 1 assigned", res)
	}
	if len(store.saved) != 0 {
		t.Error("invalid row was requeued")
	}
}

func TestGetLeadMapsNotFound(t *testing.T) {
	store := &fakeStore{getErr: repository.ErrNotFound}
	svc := newTestService(&fakePipeline{}, store, &fakeArchiver{}, &recordingBus{})

	_, err := svc.GetLead(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("GetLead error = %v, want not found", err)
	}
}

func TestCheckDuplicateRequiresContactInfo(t *testing.T) {
	svc := newTestService(&fakePipeline{}, &fakeStore{}, &fakeArchiver{}, &recordingBus{})

	_, err := svc.CheckDuplicate(context.Background(), "", "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("CheckDuplicate error = %v, want validation", err)
	}
}

func TestCheckDuplicateFindsExistingLead(t *testing.T) {
	existing := domain.StoredLead{ID: uuid.New(), Email: "jane@example.com"}
	store := &fakeStore{dup: &existing}
	svc := newTestService(&fakePipeline{}, store, &fakeArchiver{}, &recordingBus{})

	lead, err := svc.CheckDuplicate(context.Background(), "jane@example.com", "")
	if err != nil {
		t.Fatalf("CheckDuplicate: %v", err)
	}
	if lead == nil || lead.ID != existing.ID {
		t.Fatalf("expected the stored lead back, got %v", lead)
	}
}
