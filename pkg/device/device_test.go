package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/degu.go/pkg/coap"
	"github.com/robotalks/degu.go/pkg/coap/coaptest"
	"github.com/robotalks/degu.go/pkg/power"
	"github.com/robotalks/degu.go/pkg/power/stub"
)

type deviceTestEnv struct {
	dev   *Device
	board *stub.Platform
	peer  *coaptest.Peer
}

func newDeviceTestEnv(t *testing.T, handler coaptest.HandlerFunc) *deviceTestEnv {
	local, remote := coaptest.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	e := &deviceTestEnv{board: stub.New()}
	if handler == nil {
		e.peer = coaptest.Silent(remote)
	} else {
		e.peer = coaptest.NewPeer(remote, handler)
	}
	go e.peer.Serve()
	e.dev = New(local, e.board.Platform())
	e.dev.Timeout = time.Second
	return e
}

func TestUpdateShadow(t *testing.T) {
	e := newDeviceTestEnv(t, func(req *coap.Message) (coap.Code, []byte) {
		return coap.Changed, nil
	})
	code, err := e.dev.UpdateShadow(context.Background(), []byte(`{"temp":21}`))
	require.NoError(t, err)
	require.Equal(t, coap.Changed, code)

	received := e.peer.Received()
	require.Len(t, received, 1)
	require.Equal(t, coap.POST, received[0].Code)
	require.Equal(t, DefaultShadowPath, received[0].Path())
	require.Equal(t, []byte(`{"temp":21}`), received[0].Payload)
}

func TestGetShadow(t *testing.T) {
	e := newDeviceTestEnv(t, func(req *coap.Message) (coap.Code, []byte) {
		return coap.Content, []byte(`{"led":"on"}`)
	})
	e.dev.ShadowPath = "shadow"
	doc, err := e.dev.GetShadow(context.Background())
	require.NoError(t, err)
	require.Equal(t, `{"led":"on"}`, string(doc))

	received := e.peer.Received()
	require.Len(t, received, 1)
	require.Equal(t, coap.GET, received[0].Code)
	require.Equal(t, "shadow", received[0].Path())
	require.Empty(t, received[0].Payload)
}

func TestGetShadowNotFound(t *testing.T) {
	e := newDeviceTestEnv(t, func(req *coap.Message) (coap.Code, []byte) {
		return coap.NotFound, []byte("missing")
	})
	doc, err := e.dev.GetShadow(context.Background())
	require.Nil(t, doc)
	require.True(t, errors.Is(err, ErrNoShadow))
	require.Contains(t, err.Error(), "4.04")
}

func TestShadowTimeout(t *testing.T) {
	e := newDeviceTestEnv(t, nil)
	e.dev.Timeout = 20 * time.Millisecond
	_, err := e.dev.GetShadow(context.Background())
	require.True(t, coap.IsKind(err, coap.KindTimeout))
	code, err := e.dev.UpdateShadow(context.Background(), []byte("{}"))
	require.True(t, coap.IsKind(err, coap.KindTimeout))
	require.Equal(t, coap.Empty, code)
}

func TestCheckUpdate(t *testing.T) {
	e := newDeviceTestEnv(t, nil)
	status, err := e.dev.CheckUpdate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, status)

	e.dev.Updater = UpdateCheckerFunc(func(context.Context) (int, error) { return 3, nil })
	status, err = e.dev.CheckUpdate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, status)
}

func TestSuspendAndPowerDown(t *testing.T) {
	e := newDeviceTestEnv(t, nil)
	require.NoError(t, e.dev.Suspend(2, true))
	require.Contains(t, e.board.Journal(), "clock.sleep 2s")

	e.board.ResetJournal()
	src := power.WakeSource{Controller: "GPIO_0", Pin: 13}
	require.NoError(t, e.dev.PowerDown(true, []power.WakeSource{src}))
	require.Equal(t, []power.WakeSource{src}, e.board.WakeSources())
	require.Contains(t, e.board.Journal(), "power.enter DEEP_SLEEP_1")

	require.Equal(t, power.ErrExternalPowerRequired, e.dev.PowerDown(false, []power.WakeSource{src}))
}

func TestRadio(t *testing.T) {
	e := newDeviceTestEnv(t, nil)
	snap, err := e.dev.Radio()
	require.NoError(t, err)
	require.Equal(t, uint8(11), snap.Channel)

	e.dev.radio = nil
	_, err = e.dev.Radio()
	require.Equal(t, power.ErrNoRadio, err)
}
