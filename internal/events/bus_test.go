package events

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeAndUnsubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	unsubscribe := bus.Subscribe(SnapshotRecorded, func(e *Event) {
		received = append(received, e)
	})
	assert.Equal(t, 1, bus.SubscriberCount(SnapshotRecorded))

	bus.Emit(SnapshotRecorded, "snapshots", map[string]interface{}{"user_id": "u1"})
	bus.Emit(HistoryNormalized, "snapshots", nil)

	require.Len(t, received, 1)
	assert.Equal(t, SnapshotRecorded, received[0].Type)
	assert.Equal(t, "snapshots", received[0].Module)
	assert.Equal(t, "u1", received[0].Data["user_id"])

	unsubscribe()
	assert.Zero(t, bus.SubscriberCount(SnapshotRecorded))
	bus.Emit(SnapshotRecorded, "snapshots", nil)
	assert.Len(t, received, 1)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	calls := 0
	bus.Subscribe(ErrorOccurred, func(*Event) { panic("boom") })
	bus.Subscribe(ErrorOccurred, func(*Event) { calls++ })

	assert.NotPanics(t, func() { bus.Emit(ErrorOccurred, "test", nil) })
	assert.Equal(t, 1, calls)
}

func TestManager_EmitTyped(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	manager := NewManager(bus, zerolog.Nop())

	var got *Event
	bus.Subscribe(MaturityCredited, func(e *Event) { got = e })

	manager.EmitTyped("portfolio", &MaturityCreditedData{UserID: "u1", PositionID: "ftd-1", Currency: "ARS", Principal: 10000, Interest: 300})

	require.NotNil(t, got)
	assert.Equal(t, "ftd-1", got.Data["position_id"])
	assert.Equal(t, 300.0, got.Data["interest"])
}

func TestManager_NilIsNoOp(t *testing.T) {
	var manager *Manager
	assert.NotPanics(t, func() {
		manager.EmitTyped("x", &PortfolioChangedData{UserID: "u1"})
		manager.EmitError("x", errors.New("failed"), nil)
	})
}
