package speech

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/valet/pkg/events"
)

// Speaker consumes reply-ready events and synthesizes them in the
// background. It is the only asynchronous boundary in the system: the turn is
// already complete when a message arrives here, so every failure is swallowed
// after logging.
type Speaker struct {
	synth Synthesizer
	sub   message.Subscriber
}

func NewSpeaker(synth Synthesizer, sub message.Subscriber) *Speaker {
	return &Speaker{synth: synth, sub: sub}
}

// Run blocks consuming events until the context is cancelled or the
// subscriber channel closes. Callers run it in its own goroutine.
func (s *Speaker) Run(ctx context.Context) error {
	msgs, err := s.sub.Subscribe(ctx, events.TopicChat)
	if err != nil {
		return err
	}

	for msg := range msgs {
		s.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (s *Speaker) handle(ctx context.Context, msg *message.Message) {
	e, err := events.NewEventFromJSON(msg.Payload)
	if err != nil {
		log.Warn().Err(err).Msg("speech: dropping undecodable event")
		return
	}
	if e.Type != events.EventTypeReplyReady || e.Reply == "" {
		return
	}

	audio, err := s.synth.Synthesize(ctx, CleanForSpeech(e.Reply))
	if err != nil {
		log.Warn().Err(err).Str("turn_id", e.TurnID.String()).Msg("speech: synthesis failed")
		return
	}
	if audio != "" {
		log.Debug().Str("audio", audio).Str("turn_id", e.TurnID.String()).Msg("speech: reply synthesized")
	}
}
