package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	webio "github.com/caarlos0/homekit-webio"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

type testTransport struct {
	status    string
	statusErr error
	outputs   map[int]bool
	armed     map[int]bool
	passcodes []*string
	subs      map[string]bool
	refuse    bool
}

func (f *testTransport) CheckConnection(context.Context) bool { return true }

func (f *testTransport) GetInfo(context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"webio-serial":"WB-0001","webio-name":"Barn"}`), nil
}

func (f *testTransport) GetStatus(context.Context) (webio.Snapshot, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return webio.ParseSnapshot([]byte(f.status))
}

func (f *testTransport) StatusSubscription(_ context.Context, address string, subscribe bool) bool {
	if f.refuse {
		return false
	}
	if f.subs == nil {
		f.subs = map[string]bool{}
	}
	f.subs[address] = subscribe
	return true
}

func (f *testTransport) SetOutput(_ context.Context, index int, on bool) error {
	if f.outputs == nil {
		f.outputs = map[int]bool{}
	}
	f.outputs[index] = on
	return nil
}

func (f *testTransport) ArmZone(_ context.Context, index int, arm bool, passcode *string) error {
	if f.armed == nil {
		f.armed = map[int]bool{}
	}
	f.armed[index] = arm
	f.passcodes = append(f.passcodes, passcode)
	return nil
}

const testStatus = `{
	"outputs": [{"index": 0, "status": "true"}, {"index": 1, "status": "false"}],
	"zones": [
		{"index": 0, "name": "House", "status": "armed"},
		{"index": 1, "status": "disarmed"}
	]
}`

func testBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
}

func newTestBridge(tb testing.TB) (*webio.Client, *testTransport, Executor) {
	tb.Helper()
	transport := &testTransport{status: testStatus}
	cli := webio.New("10.0.0.9", transport)
	require.True(tb, cli.RefreshDeviceInfo(context.Background()))
	_, err := cli.PollStatus(context.Background())
	require.NoError(tb, err)
	return cli, transport, newExecutor(context.Background(), cli, testBackOff)
}

var errTest = errors.New("test error")

func noopApply(*webio.Client, webio.Delta) {}

// testContext returns a context canceled when the test finishes, matching
// testing.T.Context on Go toolchains that predate it.
func testContext(tb testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx
}
