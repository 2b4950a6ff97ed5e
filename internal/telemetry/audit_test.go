package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"snaplink/internal/mocks"
)

func TestAuditEmitBuildsEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit.snaplink", "snaplink", "test")

	publisher.On("PublishJSON", mock.Anything, "audit.snaplink", mock.MatchedBy(func(e AuditEnvelope) bool {
		return e.SchemaVersion == 1 &&
			e.EventType == "audit_log" &&
			e.Service == "snaplink" &&
			e.Environment == "test" &&
			e.RequestID == "req-1" &&
			e.UserID == "u1" &&
			e.Payload.Level == "INFO" &&
			e.Payload.Text == "user signed up"
	}), map[string]string{"x-request-id": "req-1"}).Return(nil).Once()

	emitter.Emit(context.Background(), "INFO", "user signed up", "req-1", "u1")
	publisher.AssertExpectations(t)
}

func TestAuditEmitNilSafe(t *testing.T) {
	var emitter *AuditEmitter
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "x", "", "")
	})

	emitter = NewAuditEmitter(nil, "k", "s", "e")
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "x", "", "")
	})
}
