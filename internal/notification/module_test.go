package notification

import (
	"context"
	"errors"
	"testing"

	agentsrepo "leadintake_backend/internal/agents/repository"
	"leadintake_backend/internal/events"
	"leadintake_backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	calls     int
	lastTo    string
	lastAgent string
	lastLead  string
	err       error
}

func (s *testSender) SendLeadAssignedEmail(_ context.Context, toEmail, agentName, leadName, leadEmail, leadPhone, leadLocation string) error {
	s.calls++
	s.lastTo = toEmail
	s.lastAgent = agentName
	s.lastLead = leadName
	return s.err
}

func (s *testSender) SendCustomEmail(context.Context, string, string, string) error { return nil }

type testAgentReader struct {
	agent agentsrepo.Agent
	err   error
}

func (r testAgentReader) GetAgent(context.Context, uuid.UUID) (agentsrepo.Agent, error) {
	return r.agent, r.err
}

func newTestModule(sender *testSender, reader AgentReader) *Module {
	return &Module{
		sender: sender,
		agents: reader,
		log:    logger.New("development"),
	}
}

func assignedEvent() events.LeadAssigned {
	return events.LeadAssigned{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		LeadName:  "John Smith",
		LeadEmail: "john@example.com",
		LeadPhone: "+31612345678",
		AgentID:   uuid.New(),
		AgentName: "Alice",
	}
}

func TestHandleLeadAssignedSendsEmail(t *testing.T) {
	sender := &testSender{}
	reader := testAgentReader{agent: agentsrepo.Agent{Name: "Alice", Email: "alice@example.com"}}
	m := newTestModule(sender, reader)

	e := assignedEvent()
	if err := m.Handle(context.Background(), e); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if sender.calls != 1 {
		t.Fatalf("sender called %d times, want 1", sender.calls)
	}
	if sender.lastTo != "alice@example.com" {
		t.Errorf("sent to %q, want agent address", sender.lastTo)
	}
	if sender.lastLead != e.LeadName {
		t.Errorf("lead name = %q, want %q", sender.lastLead, e.LeadName)
	}
}

func TestHandleLeadAssignedSkipsAgentsWithoutEmail(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, testAgentReader{agent: agentsrepo.Agent{Name: "Alice"}})

	if err := m.Handle(context.Background(), assignedEvent()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.calls != 0 {
		t.Error("sent email to agent without an address")
	}
}

func TestHandleLeadAssignedIsBestEffort(t *testing.T) {
	t.Run("send failure", func(t *testing.T) {
		sender := &testSender{err: errors.New("smtp timeout")}
		reader := testAgentReader{agent: agentsrepo.Agent{Name: "Alice", Email: "alice@example.com"}}
		m := newTestModule(sender, reader)

		if err := m.Handle(context.Background(), assignedEvent()); err != nil {
			t.Fatalf("Handle returned %v, want nil", err)
		}
	})

	t.Run("lookup failure", func(t *testing.T) {
		sender := &testSender{}
		m := newTestModule(sender, testAgentReader{err: errors.New("connection refused")})

		if err := m.Handle(context.Background(), assignedEvent()); err != nil {
			t.Fatalf("Handle returned %v, want nil", err)
		}
		if sender.calls != 0 {
			t.Error("sent email despite failed agent lookup")
		}
	})
}

func TestHandleWithoutSenderIsNoop(t *testing.T) {
	m := &Module{log: logger.New("development")}

	if err := m.Handle(context.Background(), assignedEvent()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, testAgentReader{})

	err := m.Handle(context.Background(), events.AgentAvailable{BaseEvent: events.NewBaseEvent(), AgentID: uuid.New()})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.calls != 0 {
		t.Error("unrelated event triggered an email")
	}
}
