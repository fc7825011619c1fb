package service

import (
	"context"
	"testing"
	"time"

	"ai-reading-tutor-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	modules  []string
	messages []string
	details  []map[string]interface{}
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {
	l.record(module, message, details)
}
func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.record(module, message, details)
}
func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.record(module, message, details)
}
func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {
	l.record(module, message, details)
}
func (l *recordingLogger) Sync() error { return nil }

func (l *recordingLogger) record(module, message string, details map[string]interface{}) {
	l.modules = append(l.modules, module)
	l.messages = append(l.messages, message)
	l.details = append(l.details, details)
}

func TestTurnAuditLogsEvent(t *testing.T) {
	rec := &recordingLogger{}
	svc := &turnAuditService{eventLogger: rec}

	event := events.BaseEvent{
		Type:       "events.tutor.TUTOR_TURN_COMPLETED",
		Data:       map[string]interface{}{"trace_id": "trace-1", "intent": "quiz"},
		OccurredAt: time.Now(),
	}

	err := svc.handleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Len(t, rec.messages, 1)
	assert.Equal(t, "AUDIT", rec.modules[0])
	assert.Equal(t, "events.tutor.TUTOR_TURN_COMPLETED", rec.details[0]["subject"])
	payload, ok := rec.details[0]["payload"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "trace-1", payload["trace_id"])
}

func TestTurnAuditStartWithoutNats(t *testing.T) {
	rec := &recordingLogger{}
	svc := NewTurnAuditService(nil, rec)

	assert.NoError(t, svc.Start())
	assert.Empty(t, rec.messages)
}
