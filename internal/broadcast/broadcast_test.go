package broadcast

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tempest-bot/internal/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	fail  map[string]error
	sent  []string
	order []string
	log   *[]string
}

func (f *fakeSender) Send(_ context.Context, channelID, message string) error {
	f.order = append(f.order, channelID)
	if f.log != nil {
		*f.log = append(*f.log, "send:"+channelID)
	}
	if err := f.fail[channelID]; err != nil {
		return err
	}
	f.sent = append(f.sent, message)
	return nil
}

type countingPacer struct {
	waits int
	err   error
	log   *[]string
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	if p.log != nil {
		*p.log = append(*p.log, "wait")
	}
	return p.err
}

var admin = access.Actor{ID: "admin", Capabilities: access.CapAdministrator}

func channels(n int) []Channel {
	out := make([]Channel, n)
	for i := range out {
		out[i] = Channel{ID: fmt.Sprintf("c%d", i), CanSend: true}
	}
	return out
}

func newController(s Sender, p Pacer) *Controller {
	return NewController(s, p, access.NewGate("owner"), zap.NewNop())
}

func TestBroadcastContinuesPastFailure(t *testing.T) {
	sender := &fakeSender{fail: map[string]error{"c2": errors.New("missing access")}}
	pacer := &countingPacer{}
	summary, err := newController(sender, pacer).Broadcast(context.Background(), Job{
		Message:  "hello",
		Actor:    admin,
		Channels: channels(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Len(t, sender.order, 5)
	assert.Equal(t, StatusFailed, summary.Results[2].Status)
	assert.Error(t, summary.Results[2].Err)
	assert.Equal(t, []string{"c0", "c1", "c2", "c3", "c4"}, sender.order)
}

func TestBroadcastSkipsUnsendableChannels(t *testing.T) {
	chs := channels(3)
	for i := range chs {
		chs[i].CanSend = false
	}
	sender := &fakeSender{}
	pacer := &countingPacer{}
	summary, err := newController(sender, pacer).Broadcast(context.Background(), Job{Message: "x", Actor: admin, Channels: chs})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 3, summary.Skipped)
	assert.Empty(t, sender.order)
	assert.Zero(t, pacer.waits)
}

func TestBroadcastPacesBetweenAttempts(t *testing.T) {
	var log []string
	chs := channels(4)
	chs[1].CanSend = false
	sender := &fakeSender{log: &log}
	pacer := &countingPacer{log: &log}
	summary, err := newController(sender, pacer).Broadcast(context.Background(), Job{Message: "x", Actor: admin, Channels: chs})
	require.NoError(t, err)
	assert.Equal(t, summary.Attempts()-1, pacer.waits)
	assert.Equal(t, []string{"send:c0", "wait", "send:c2", "wait", "send:c3"}, log)
	assert.Equal(t, len(chs), summary.Total())
}

func TestBroadcastRequiresAdministrator(t *testing.T) {
	sender := &fakeSender{}
	_, err := newController(sender, &countingPacer{}).Broadcast(context.Background(), Job{
		Message:  "x",
		Actor:    access.Actor{ID: "mod", Capabilities: access.CapKick | access.CapBan | access.CapModerate},
		Channels: channels(2),
	})
	require.ErrorIs(t, err, access.ErrPermissionDenied)
	assert.Empty(t, sender.order)
}

func TestBroadcastOwnerAllowed(t *testing.T) {
	sender := &fakeSender{}
	summary, err := newController(sender, &countingPacer{}).Broadcast(context.Background(), Job{
		Message:  "x",
		Actor:    access.Actor{ID: "owner"},
		Channels: channels(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
}

type ctxSender struct {
	calls int
}

func (s *ctxSender) Send(ctx context.Context, _, _ string) error {
	s.calls++
	return ctx.Err()
}

func TestBroadcastPacerErrorStillAttemptsEverySend(t *testing.T) {
	sender := &fakeSender{}
	pacer := &countingPacer{err: context.Canceled}
	summary, err := newController(sender, pacer).Broadcast(context.Background(), Job{Message: "x", Actor: admin, Channels: channels(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Sent)
	assert.Zero(t, summary.Failed)
	assert.Len(t, sender.order, 3)
	assert.Equal(t, 2, pacer.waits)
	assert.Equal(t, len(sender.order), summary.Attempts())
}

func TestBroadcastCancelledCountsOnlyAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chs := channels(3)
	chs[1].CanSend = false
	sender := &ctxSender{}
	summary, err := newController(sender, NewFixedPacer(time.Hour)).Broadcast(ctx, Job{Message: "x", Actor: admin, Channels: chs})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, sender.calls, summary.Attempts())
	assert.Equal(t, len(chs), summary.Total())
	for _, r := range summary.Results {
		if r.Status == StatusFailed {
			assert.ErrorIs(t, r.Err, context.Canceled)
		}
	}
}

func TestFixedPacer(t *testing.T) {
	assert.NoError(t, NewFixedPacer(0).Wait(context.Background()))
	assert.NoError(t, NewFixedPacer(time.Millisecond).Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewFixedPacer(time.Hour).Wait(ctx), context.Canceled)
}
