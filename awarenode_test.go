package awarenode_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/awarenode"
	"github.com/hupe1980/awarenode/core"
	"github.com/hupe1980/awarenode/engine"
	"github.com/hupe1980/awarenode/internal/testutil"
	"github.com/hupe1980/awarenode/runner"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newNode(t *testing.T, rig *testutil.Rig, optFns ...func(o *awarenode.Options)) *awarenode.Node {
	t.Helper()
	node, err := awarenode.New(engine.Environments{
		Sensor:          rig.Sensor,
		Trigger:         rig.Timer,
		Radio:           rig.Radio,
		Power:           rig.Gauge,
		AppAlarm:        rig.AppAlarms.Func(),
		BatteryDepleted: rig.Depletions.Func(),
	}, optFns...)
	require.NoError(t, err)
	return node
}

func TestNew_MissingEnvironments(t *testing.T) {
	_, err := awarenode.New(engine.Environments{})
	assert.ErrorIs(t, err, core.ErrMissingEnvironment)
}

func TestNode_RunUntilDepleted(t *testing.T) {
	rig := testutil.NewRig(200, 50)
	node := newNode(t, rig, func(o *awarenode.Options) { o.NodeID = "node-1" })

	res, err := node.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, runner.StopDepleted, res.Reason)
	assert.Equal(t, uint64(18), res.Cycles)
	assert.Equal(t, 1, rig.Depletions.Value())
	assert.Equal(t, "node-1", node.NodeID())

	assert.Equal(t, 18, node.History().Len())
	last, err := node.History().Last()
	require.NoError(t, err)
	assert.True(t, last.Snapshot.Depleted)
	assert.Equal(t, "node-1", last.Snapshot.NodeID)
	assert.Equal(t, node.Snapshot().Cycle, last.Snapshot.Cycle)
}

func TestNode_HistoryIsBounded(t *testing.T) {
	node := newNode(t, testutil.NewRig(120, 50), func(o *awarenode.Options) {
		o.HistorySize = 4
		o.MaxCycles = 10
	})

	res, err := node.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runner.StopMaxCycles, res.Reason)

	history := node.History().History()
	require.Len(t, history, 4)
	assert.Equal(t, uint64(7), history[0].Snapshot.Cycle)
	assert.Equal(t, uint64(10), history[3].Snapshot.Cycle)
}

func TestNode_AlarmsAreCountedAndForwarded(t *testing.T) {
	rig := testutil.NewRig(120, 50, 500)
	node := newNode(t, rig)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, node.Register(reg))

	node.Cycle()
	node.Cycle()

	assert.Equal(t, []core.AlarmCode{core.AlarmImplausibleData}, rig.AppAlarms.Codes())
	count, err := promtest.GatherAndCount(reg, "awarenode_alarms_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Error(t, node.Register(reg), "collectors are registered once")
}

func TestNode_StartStop(t *testing.T) {
	node := newNode(t, testutil.NewRig(120, 50), func(o *awarenode.Options) {
		o.TimeScale = 1
	})

	outcomes, err := node.Start(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return node.Engine().CycleCount() == 1
	}, time.Second, time.Millisecond)
	node.Stop()

	outcome := <-outcomes
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, runner.StopCanceled, outcome.Result.Reason)
	assert.Equal(t, uint64(1), outcome.Result.Cycles)
}
