package speech

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/valet/pkg/events"
)

func TestCleanForSpeech(t *testing.T) {
	assert.Equal(t, "bold and italic", CleanForSpeech("**bold** and *italic*"))
	assert.Equal(t, "plain", CleanForSpeech("plain"))
}

type recordingSynth struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recordingSynth) Synthesize(_ context.Context, text string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.texts = append(r.texts, text)
	return "out.mp3", nil
}

func (r *recordingSynth) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.texts))
	copy(out, r.texts)
	return out
}

func publishEvent(t *testing.T, pubSub *gochannel.GoChannel, e events.Event) {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(events.TopicChat, message.NewMessage(watermill.NewUUID(), b)))
}

func TestSpeakerSynthesizesReadyReplies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	synth := &recordingSynth{}
	speaker := NewSpeaker(synth, pubSub)

	done := make(chan struct{})
	go func() {
		_ = speaker.Run(ctx)
		close(done)
	}()

	// Give the subscriber time to attach before publishing.
	time.Sleep(50 * time.Millisecond)

	publishEvent(t, pubSub, events.Event{Type: events.EventTypeTurnStarted, TurnID: uuid.New(), UserInput: "hi"})
	publishEvent(t, pubSub, events.Event{Type: events.EventTypeReplyReady, TurnID: uuid.New(), Reply: "*hello* there"})

	require.Eventually(t, func() bool {
		return len(synth.recorded()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"hello there"}, synth.recorded())

	require.NoError(t, pubSub.Close())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("speaker did not stop after subscriber closed")
	}
}

func TestSpeakerJoinsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	synth := &recordingSynth{}
	speaker := NewSpeaker(synth, pubSub)

	eg := errgroup.Group{}
	eg.Go(func() error {
		return speaker.Run(ctx)
	})

	time.Sleep(50 * time.Millisecond)
	publishEvent(t, pubSub, events.Event{Type: events.EventTypeReplyReady, TurnID: uuid.New(), Reply: "goodbye"})

	require.Eventually(t, func() bool {
		return len(synth.recorded()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("speaker did not join after cancellation")
	}
}

func TestSpeakerSwallowsSynthesisFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	synth := &recordingSynth{err: errors.New("tts unavailable")}
	speaker := NewSpeaker(synth, pubSub)

	go func() { _ = speaker.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	publishEvent(t, pubSub, events.Event{Type: events.EventTypeReplyReady, TurnID: uuid.New(), Reply: "hello"})
	publishEvent(t, pubSub, events.Event{Type: events.EventTypeReplyReady, TurnID: uuid.New(), Reply: "still alive"})

	// The speaker keeps consuming after failures; nothing to assert beyond
	// the absence of a panic and an empty recording.
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, synth.recorded())
}
