package notification

import (
	"context"
	"testing"

	"repaircrm_backend/internal/email"
	"repaircrm_backend/internal/events"
	"repaircrm_backend/platform/logger"

	"github.com/google/uuid"
)

// emailSettings is a config.EmailConfig with delivery switched off and a
// fallback inbox configured, the default deployment shape.
type emailSettings struct {
	inbox string
}

func (emailSettings) GetEmailEnabled() bool       { return false }
func (emailSettings) GetSMTPHost() string         { return "" }
func (emailSettings) GetSMTPPort() int            { return 0 }
func (emailSettings) GetSMTPUsername() string     { return "" }
func (emailSettings) GetSMTPPassword() string     { return "" }
func (emailSettings) GetEmailFromName() string    { return "" }
func (emailSettings) GetEmailFromAddress() string { return "" }
func (e emailSettings) GetFallbackInbox() string  { return e.inbox }

func zeroCount(context.Context, uuid.UUID, bool) (int, error) { return 0, nil }

func followUpDue() events.LeadFollowUpDue {
	return events.LeadFollowUpDue{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        uuid.New(),
		CustomerName:  "Asha Rao",
		ContactNumber: "+919876543210",
		DeviceType:    "smartphone",
	}
}

// TestFollowUpDueWithDisabledEmail wires the module the way the binaries do
// when email is off: email.NewSender returns a nil *email.Sender, and the
// value may end up inside the EmailSender interface. A due follow-up must
// still be delivered in-app without touching SMTP.
func TestFollowUpDueWithDisabledEmail(t *testing.T) {
	cfg := emailSettings{inbox: "shop@example.com"}
	log := logger.New("development")

	m := NewModule(zeroCount, email.NewSender(cfg), cfg, log)
	defer m.Close()

	bus := events.NewInMemoryBus(log)
	m.RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), followUpDue()); err != nil {
		t.Fatalf("follow-up due with disabled email: %v", err)
	}
}

func TestFollowUpDueWithoutSender(t *testing.T) {
	cfg := emailSettings{inbox: "shop@example.com"}
	log := logger.New("development")

	m := NewModule(zeroCount, nil, cfg, log)
	defer m.Close()

	bus := events.NewInMemoryBus(log)
	m.RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), followUpDue()); err != nil {
		t.Fatalf("follow-up due without a sender: %v", err)
	}
}
