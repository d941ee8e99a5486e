package telephony

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gateway abstracts the click-to-call provider. The dashboard only
// needs to start a call, poll its status and hang up; logging the
// result is the interaction logger's job.
type Gateway interface {
	InitiateCall(ctx context.Context, from, to string) (*CallResult, error)
	GetCallStatus(ctx context.Context, callID string) (*CallStatus, error)
	EndCall(ctx context.Context, callID string) error
}

// CallResult holds the result of initiating a call
type CallResult struct {
	CallID    string    `json:"call_id"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// CallStatus holds the current status of a call
type CallStatus struct {
	CallID   string     `json:"call_id"`
	Status   string     `json:"status"`
	Duration int        `json:"duration"`
	EndedAt  *time.Time `json:"ended_at,omitempty"`
}

// NoopGateway is used when no telephony provider is configured. Calls
// "succeed" immediately so operators can still log outcomes by hand.
type NoopGateway struct{}

// NewNoopGateway creates a gateway that accepts every call
func NewNoopGateway() *NoopGateway {
	return &NoopGateway{}
}

func (g *NoopGateway) InitiateCall(ctx context.Context, from, to string) (*CallResult, error) {
	return &CallResult{
		CallID:    uuid.NewString(),
		Status:    "initiated",
		StartedAt: time.Now().UTC(),
	}, nil
}

func (g *NoopGateway) GetCallStatus(ctx context.Context, callID string) (*CallStatus, error) {
	return &CallStatus{CallID: callID, Status: "completed"}, nil
}

func (g *NoopGateway) EndCall(ctx context.Context, callID string) error {
	return nil
}
