package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelcore/actormesh"
)

func TestRatioToCharClampsAndScales(t *testing.T) {
	assert.Equal(t, loadChars[0], ratioToChar(-1))
	assert.Equal(t, loadChars[len(loadChars)-1], ratioToChar(2))
	assert.Equal(t, loadChars[0], ratioToChar(0))
}

func TestBarReportsDepthAndCapacity(t *testing.T) {
	load := actormesh.MailboxLoad{
		Address:  actormesh.NewAddress("local", "worker", "1"),
		Depth:    4,
		Capacity: 8,
	}
	bar := Bar(load)
	assert.Contains(t, bar, "actor://local/worker/1")
	assert.Contains(t, bar, "4/8")
}

func TestRenderIncludesSummaryAndBars(t *testing.T) {
	sys := actormesh.NewSystem(actormesh.FastTestConfig())
	sys.EnableTestMode()
	require.NoError(t, sys.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sys.Stop(ctx)
	}()

	_, err := sys.Spawn(noopBehavior{}, actormesh.SpawnOptions{Type: "probe"})
	require.NoError(t, err)

	out := sys.MailboxLoads()
	require.Len(t, out, 1)

	rendered := Render(sys)
	assert.True(t, strings.HasPrefix(rendered, "ACTORMESH DASHBOARD"))
	assert.Contains(t, rendered, "actors=1")
}

type noopBehavior struct{ actormesh.NoOpLifecycle }

func (noopBehavior) OnMessage(ctx actormesh.Context) (*actormesh.Result, error) { return nil, nil }
