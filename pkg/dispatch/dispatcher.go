// Package dispatch runs the per-turn state machine: model call, action
// extraction, handler execution, and the optional single grounding round.
// Every path terminates in a displayable reply; no failure is allowed to
// drop a turn or crash the session.
package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/valet/pkg/actions"
	"github.com/go-go-golems/valet/pkg/conversation"
	"github.com/go-go-golems/valet/pkg/engine"
	"github.com/go-go-golems/valet/pkg/events"
	"github.com/go-go-golems/valet/pkg/parse"
	"github.com/go-go-golems/valet/pkg/prompt"
)

// ToolErrorPrefix marks replies produced by a failed handler. Policy: the
// user always sees the handler's outcome, success or failure; the model's
// pre-composed reply_to_user is only used for the explicit "none" action.
const ToolErrorPrefix = "Tool Error: "

// OverloadedReply is the soft failure shown when the model provider stays
// rate limited through the bounded retry loop.
const OverloadedReply = "The assistant is overloaded right now. Please try again in a moment."

// Dispatcher receives all collaborators at construction; there are no
// package-level service handles.
type Dispatcher struct {
	engine   engine.Engine
	registry actions.Registry
	parser   *parse.Parser
	builder  *prompt.Builder
	facts    *prompt.FactFetcher
	manager  conversation.Manager
	events   *events.PublisherManager
}

type Option func(*Dispatcher)

// WithPublisher attaches an event publisher. Without one, events are simply
// not emitted.
func WithPublisher(pm *events.PublisherManager) Option {
	return func(d *Dispatcher) {
		d.events = pm
	}
}

func NewDispatcher(
	eng engine.Engine,
	registry actions.Registry,
	builder *prompt.Builder,
	facts *prompt.FactFetcher,
	manager conversation.Manager,
	options ...Option,
) *Dispatcher {
	ret := &Dispatcher{
		engine:   eng,
		registry: registry,
		parser:   parse.NewParser(registry),
		builder:  builder,
		facts:    facts,
		manager:  manager,
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

// RunTurn executes one full user turn: fresh fact snapshot, prompt assembly,
// model call, dispatch, history append, and event publication. The returned
// reply is always displayable; model and handler failures are folded into it.
func (d *Dispatcher) RunTurn(ctx context.Context, input string, attachment *prompt.Attachment) string {
	turnID := uuid.New()
	d.publish(events.Event{Type: events.EventTypeTurnStarted, TurnID: turnID, UserInput: input})

	reply := d.runTurn(ctx, turnID, input, attachment)

	userContent := input
	if userContent == "" && attachment != nil {
		userContent = "[audio message]"
	}
	d.manager.AppendMessages(
		conversation.NewMessage(conversation.RoleUser, userContent),
		conversation.NewMessage(conversation.RoleAssistant, reply),
	)

	d.publish(events.Event{Type: events.EventTypeReplyReady, TurnID: turnID, Reply: reply})
	return reply
}

func (d *Dispatcher) runTurn(ctx context.Context, turnID uuid.UUID, input string, attachment *prompt.Attachment) string {
	facts := d.facts.Fetch(ctx)
	bundle, err := d.builder.Build(d.manager.Window(d.builder.HistoryWindow), facts, input, attachment)
	if err != nil {
		log.Error().Err(err).Str("turn_id", turnID.String()).Msg("dispatch: prompt assembly failed")
		return "AI Error: " + err.Error()
	}

	raw, err := d.engine.Generate(ctx, bundle)
	if err != nil {
		return modelFailureReply(err)
	}

	return d.handle(ctx, turnID, raw, input)
}

// Handle coerces one raw model output into the final reply. Exposed
// separately from RunTurn so the extraction/dispatch contract can be
// exercised without a model in the loop.
func (d *Dispatcher) Handle(ctx context.Context, raw string, userInput string) string {
	return d.handle(ctx, uuid.New(), raw, userInput)
}

func (d *Dispatcher) handle(ctx context.Context, turnID uuid.UUID, raw string, userInput string) string {
	act, ok := d.parser.Parse(raw)
	if !ok {
		// Plain-chat path, the majority case.
		return raw
	}

	schema, ok := d.registry.Resolve(act.Kind)
	if !ok {
		return raw
	}
	handler, ok := d.registry.Handler(act.Kind)
	if !ok {
		return raw
	}

	log.Debug().
		Str("turn_id", turnID.String()).
		Str("action", act.String()).
		Bool("grounding", schema.Grounding).
		Msg("dispatch: executing action")

	result, err := d.safeExecute(ctx, handler, act.Parameters)

	e := events.Event{Type: events.EventTypeActionDispatched, TurnID: turnID, Action: string(act.Kind)}
	if err != nil {
		e.ActionError = err.Error()
	}
	d.publish(e)

	if err != nil {
		log.Error().Err(err).Str("action", string(act.Kind)).Msg("dispatch: handler failed")
		return ToolErrorPrefix + err.Error()
	}

	if act.Kind == actions.KindNone {
		if act.Reply != "" {
			return act.Reply
		}
		return raw
	}

	if schema.Grounding {
		return d.groundingRound(ctx, turnID, result, userInput)
	}

	// Terminal action: the handler's outcome string is the reply; the
	// model's trailing text is discarded.
	return result
}

// groundingRound re-invokes the model exactly once with the handler output
// embedded as context. The second response is returned verbatim and never
// parsed for actions, bounding recursion at depth one.
func (d *Dispatcher) groundingRound(ctx context.Context, turnID uuid.UUID, toolResult string, userInput string) string {
	d.publish(events.Event{Type: events.EventTypeGroundingStarted, TurnID: turnID})

	bundle, err := d.builder.BuildGrounding(toolResult, userInput)
	if err != nil {
		log.Error().Err(err).Msg("dispatch: grounding prompt assembly failed, returning raw tool output")
		return toolResult
	}

	final, err := d.engine.Generate(ctx, bundle)
	if err != nil {
		log.Error().Err(err).Msg("dispatch: grounding round failed, returning raw tool output")
		return toolResult
	}
	return final
}

// safeExecute shields the dispatcher from misbehaving handlers: a panic is
// converted into an error like any other collaborator failure.
func (d *Dispatcher) safeExecute(ctx context.Context, handler actions.Handler, params map[string]string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, params)
}

func modelFailureReply(err error) string {
	if errors.Is(err, engine.ErrRateLimited) {
		return OverloadedReply
	}
	return "AI Error: " + err.Error()
}

func (d *Dispatcher) publish(e events.Event) {
	if d.events == nil {
		return
	}
	d.events.PublishBlind(events.TopicChat, e)
}
