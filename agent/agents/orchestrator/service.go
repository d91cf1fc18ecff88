// Package orchestrator coordinates the flight and hotel agents into travel plans.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	nodex "github.com/tanpawarit/travel-agent-mesh/agent/nodes/orchestrator"
	promptx "github.com/tanpawarit/travel-agent-mesh/agent/prompt"
)

type (
	TripRequest = nodex.TripRequest
	TravelPlan  = nodex.TravelPlan
	JoinPolicy  = nodex.JoinPolicy
)

const DefaultCallTimeout = 60 * time.Second

// Config is loaded with the ORCHESTRATOR prefix.
type Config struct {
	Addr           string        `envconfig:"ADDR" split_words:"true" default:":8090"`
	FlightAgentURL string        `envconfig:"FLIGHT_AGENT_URL" split_words:"true" default:"http://localhost:8080"`
	HotelAgentURL  string        `envconfig:"HOTEL_AGENT_URL" split_words:"true" default:"http://localhost:8082"`
	CallTimeout    time.Duration `envconfig:"CALL_TIMEOUT" split_words:"true" default:"60s"`
	StatusTimeout  time.Duration `envconfig:"STATUS_TIMEOUT" split_words:"true" default:"5s"`
	JoinPolicy     string        `envconfig:"JOIN_POLICY" split_words:"true" default:"all-or-nothing"`
}

func (c Config) Validate() error {
	if _, err := nodex.ParseJoinPolicy(c.JoinPolicy); err != nil {
		return err
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("%w: ORCHESTRATOR_CALL_TIMEOUT must be positive", contractx.ErrValidation)
	}
	return nil
}

// RemoteAgent is a downstream A2A agent. *a2a.Client implements it.
type RemoteAgent interface {
	nodex.AgentCaller
	Card(ctx context.Context) (a2a.AgentCard, error)
	BaseURL() string
}

type Option func(*Orchestrator)

func WithGenerator(gen contractx.Generator) Option {
	return func(o *Orchestrator) {
		o.generator = gen
	}
}

func WithJoinPolicy(p JoinPolicy) Option {
	return func(o *Orchestrator) {
		if p != "" {
			o.policy = p
		}
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

func WithStatusTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.statusTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

type Orchestrator struct {
	flight    RemoteAgent
	hotel     RemoteAgent
	generator contractx.Generator
	prompts   promptx.PromptSet

	policy        JoinPolicy
	callTimeout   time.Duration
	statusTimeout time.Duration

	planRunner compose.Runnable[nodex.TripRequest, nodex.TravelPlan]

	now   func() time.Time
	newID func() string
}

func New(flight, hotel RemoteAgent, opts ...Option) (*Orchestrator, error) {
	if flight == nil {
		return nil, errors.New("flight agent is required")
	}
	if hotel == nil {
		return nil, errors.New("hotel agent is required")
	}

	prompts, err := promptx.LoadPromptSet()
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		flight:        flight,
		hotel:         hotel,
		prompts:       prompts,
		policy:        nodex.JoinAllOrNothing,
		callTimeout:   DefaultCallTimeout,
		statusTimeout: 5 * time.Second,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	runner, err := o.compilePlanTripGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.planRunner = runner
	return o, nil
}

// PlanTrip fans the request out to both agents and joins the results.
func (o *Orchestrator) PlanTrip(ctx context.Context, req TripRequest) (TravelPlan, error) {
	plan, err := o.planRunner.Invoke(ctx, req)
	if err != nil {
		return TravelPlan{}, err
	}
	log.Ctx(ctx).Info().
		Str("trip_id", plan.TripID).
		Str("status", string(plan.Status)).
		Int("flights", len(plan.Flights)).
		Int("hotels", len(plan.Hotels)).
		Int("warnings", len(plan.Warnings)).
		Msg("travel plan ready")
	return plan, nil
}

type ChatReply struct {
	Response string `json:"response"`
	Agent    string `json:"agent,omitempty"`
	TaskID   string `json:"taskId,omitempty"`
}

// Chat answers with the generator and, on travel keywords, also routes the
// message to the matching agent. Flight keywords win over hotel keywords.
func (o *Orchestrator) Chat(ctx context.Context, message string) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	reply := o.generate(ctx, message)

	agentType, caller, ok := o.route(message)
	if !ok {
		return ChatReply{Response: reply}, nil
	}

	res := nodex.Call(ctx, agentType, caller, message, o.callTimeout).Wait(ctx)
	out := ChatReply{Agent: string(agentType), TaskID: res.TaskID}
	if res.Err != nil {
		out.Response = fmt.Sprintf("%s\n\nThe %s Agent could not complete the request: %v", reply, agentType.Title(), res.Err)
		return out, nil
	}
	out.Response = fmt.Sprintf("%s\n\nI've coordinated with the %s Agent (Task: %s) for detailed %s assistance.",
		reply, agentType.Title(), res.TaskID, agentType)
	return out, nil
}

func (o *Orchestrator) generate(ctx context.Context, message string) string {
	if o.generator == nil {
		return "I apologize, but the AI service is not configured."
	}
	reply, err := o.generator.Generate(ctx, message, o.prompts.Orchestrator)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("chat generation failed")
		return "I apologize, but I encountered an error processing your request: " + err.Error()
	}
	return reply
}

func (o *Orchestrator) route(message string) (contractx.AgentType, nodex.AgentCaller, bool) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "flight"), strings.Contains(lower, "fly"):
		return contractx.AgentTypeFlight, o.flight, true
	case strings.Contains(lower, "hotel"), strings.Contains(lower, "accommodation"):
		return contractx.AgentTypeHotel, o.hotel, true
	default:
		return "", nil, false
	}
}
