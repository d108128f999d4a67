package steam_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"github.com/robalyx/presencerelay/internal/steam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	status steam.Status
}

func (s staticSource) Status() steam.Status {
	return s.status
}

func setupReporter(t *testing.T, status steam.Status) (*steam.StatusReporter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return steam.NewStatusReporter(client, staticSource{status: status}, zap.NewNop()), mr
}

func TestStatusReporterReport(t *testing.T) {
	t.Parallel()

	reporter, mr := setupReporter(t, steam.Status{
		State:     steam.StateOnline,
		Online:    true,
		Friends:   12,
		LastError: "steam connection dropped",
	})

	require.NoError(t, reporter.Report(t.Context()))

	raw, err := mr.Get(reporter.Key())
	require.NoError(t, err)

	var reported steam.ReportedStatus
	require.NoError(t, sonic.Unmarshal([]byte(raw), &reported))

	assert.Equal(t, reporter.InstanceID(), reported.InstanceID)
	assert.Equal(t, "Online", reported.State)
	assert.True(t, reported.Online)
	assert.Equal(t, 12, reported.Friends)
	assert.Equal(t, "steam connection dropped", reported.LastError)
	assert.Equal(t, steam.HeartbeatTTL, mr.TTL(reporter.Key()))
}

func TestStatusReporterStopRemovesKey(t *testing.T) {
	t.Parallel()

	reporter, mr := setupReporter(t, steam.Status{State: steam.StateDisconnected})

	require.NoError(t, reporter.Report(t.Context()))
	assert.True(t, mr.Exists(reporter.Key()))

	reporter.Stop(t.Context())
	assert.False(t, mr.Exists(reporter.Key()))

	// Stopping twice is a no-op
	reporter.Stop(t.Context())
}
