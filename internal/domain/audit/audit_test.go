package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEventMarshalsSnapshots(t *testing.T) {
	evt, err := NewEvent("finance@atm.ng", ActionPayrollApprove, EntityPayrollSubmission, "sub-1",
		map[string]string{"status": "submitted"}, map[string]string{"status": "approved"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"submitted"}`, string(evt.Before))
	assert.JSONEq(t, `{"status":"approved"}`, string(evt.After))
}

func TestNewEventOmitsNilSnapshots(t *testing.T) {
	evt, err := NewEvent("hr@atm.ng", ActionPayrollDelete, EntityPayrollSubmission, "sub-1", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, evt.Before)
	assert.Nil(t, evt.After)
}

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{Action: ActionPayrollPay, EntityID: "sub-9"})
	assert.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE 1=1 AND action = $1 AND entity_id = $2", query)
	assert.Equal(t, []any{ActionPayrollPay, "sub-9"}, args)
}

func TestLogRecorder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	recorder := NewLogRecorder(zap.New(core))

	require.NoError(t, recorder.Record(context.Background(), Event{ActorID: "hr", Action: ActionPayrollSubmit, EntityID: "sub-2"}))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, ActionPayrollSubmit, fields["action"])
	assert.Equal(t, "sub-2", fields["entityId"])
}
