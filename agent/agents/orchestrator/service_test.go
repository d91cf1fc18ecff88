package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tanpawarit/travel-agent-mesh/agent/a2a"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	nodex "github.com/tanpawarit/travel-agent-mesh/agent/nodes/orchestrator"
)

type fakeAgent struct {
	url     string
	card    a2a.AgentCard
	cardErr error
	send    func(ctx context.Context, params a2a.MessageSendParams) (a2a.Event, error)

	mu      sync.Mutex
	prompts []string
}

func (f *fakeAgent) SendMessage(ctx context.Context, params a2a.MessageSendParams) (a2a.Event, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, params.Message.Text())
	f.mu.Unlock()
	return f.send(ctx, params)
}

func (f *fakeAgent) Card(context.Context) (a2a.AgentCard, error) {
	return f.card, f.cardErr
}

func (f *fakeAgent) BaseURL() string {
	return f.url
}

func (f *fakeAgent) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func completedTask(id, text string, data map[string]any) a2a.Task {
	parts := []a2a.Part{a2a.TextPart(text)}
	if data != nil {
		parts = append(parts, a2a.DataPart(data))
	}
	return a2a.Task{
		Kind:      a2a.KindTask,
		ID:        id,
		Status:    a2a.TaskStatus{State: a2a.TaskStateCompleted},
		Artifacts: []a2a.Artifact{{ArtifactID: id + "-result", Parts: parts}},
	}
}

func flightAgent() *fakeAgent {
	return &fakeAgent{
		url:  "http://flight.test",
		card: a2a.AgentCard{Name: "Flight Agent", Capabilities: a2a.AgentCapabilities{Streaming: true}},
		send: func(context.Context, a2a.MessageSendParams) (a2a.Event, error) {
			return completedTask("flight-task-1", "Found 1 flights. Here are the options: AERO1:NYC-Paris", map[string]any{
				"flights": []any{map[string]any{"flightId": "AERO1:NYC-Paris", "airline": "AeroGo", "price": 275.5}},
				"total":   1,
			}), nil
		},
	}
}

func hotelAgent() *fakeAgent {
	return &fakeAgent{
		url:  "http://hotel.test",
		card: a2a.AgentCard{Name: "Hotel Agent", Capabilities: a2a.AgentCapabilities{StateTransitionHistory: true}},
		send: func(context.Context, a2a.MessageSendParams) (a2a.Event, error) {
			return completedTask("hotel-task-1", "Found 1 hotels. Here are the options: HI1:Paris", map[string]any{
				"hotels": []any{map[string]any{"hotelId": "HI1:Paris", "name": "Holiday Inn Paris", "pricePerNight": 120}},
				"total":  1,
			}), nil
		},
	}
}

type fakeGenerator struct {
	reply    string
	err      error
	preamble string
	prompt   string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, systemPreamble string) (string, error) {
	g.prompt = prompt
	g.preamble = systemPreamble
	return g.reply, g.err
}

func trip() TripRequest {
	return TripRequest{From: "NYC", To: "Paris", DepartureDate: "2025-05-01", ReturnDate: "2025-05-08", Preferences: "window seat"}
}

func newTestOrchestrator(t *testing.T, flight, hotel RemoteAgent, opts ...Option) *Orchestrator {
	t.Helper()

	opts = append([]Option{WithIDGenerator(func() string { return "trip-1" })}, opts...)
	o, err := New(flight, hotel, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestPlanTripWithoutGeneratorUsesFallback(t *testing.T) {
	t.Parallel()

	flight, hotel := flightAgent(), hotelAgent()
	o := newTestOrchestrator(t, flight, hotel)

	plan, err := o.PlanTrip(context.Background(), trip())
	if err != nil {
		t.Fatalf("PlanTrip() error = %v", err)
	}

	if plan.TripID != "trip-1" || plan.Status != nodex.PlanStatusPlanned {
		t.Fatalf("plan = %+v", plan)
	}
	want := "Coordinated plan with flight and hotel agents. Task IDs: Flight=flight-task-1, Hotel=hotel-task-1"
	if plan.Narrative != want {
		t.Fatalf("narrative = %q, want %q", plan.Narrative, want)
	}
	if len(plan.Flights) != 1 || plan.Flights[0].FlightID != "AERO1:NYC-Paris" || plan.Flights[0].Fare != 275.5 {
		t.Fatalf("flights = %+v", plan.Flights)
	}
	if len(plan.Hotels) != 1 || plan.Hotels[0].HotelID != "HI1:Paris" {
		t.Fatalf("hotels = %+v", plan.Hotels)
	}
	if plan.Preferences != "window seat" || len(plan.Warnings) != 0 {
		t.Fatalf("plan = %+v", plan)
	}

	if got := flight.lastPrompt(); got != "Search for flights from NYC to Paris, departing 2025-05-01, returning 2025-05-08. Preferences: window seat" {
		t.Fatalf("flight prompt = %q", got)
	}
	if got := hotel.lastPrompt(); got != "Find hotels in Paris for check-in 2025-05-01, check-out 2025-05-08. Consider proximity to airport and city center. Preferences: window seat" {
		t.Fatalf("hotel prompt = %q", got)
	}
}

func TestPlanTripPassengersAreShared(t *testing.T) {
	t.Parallel()

	flight, hotel := flightAgent(), hotelAgent()
	o := newTestOrchestrator(t, flight, hotel)

	req := trip()
	req.Passengers = 3
	if _, err := o.PlanTrip(context.Background(), req); err != nil {
		t.Fatalf("PlanTrip() error = %v", err)
	}
	if !strings.HasSuffix(flight.lastPrompt(), " Travelers: 3 passengers.") {
		t.Fatalf("flight prompt = %q", flight.lastPrompt())
	}
	if !strings.HasSuffix(hotel.lastPrompt(), " Guests: 3 guests.") {
		t.Fatalf("hotel prompt = %q", hotel.lastPrompt())
	}
}

func TestPlanTripWithGeneratorIsCoordinated(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: "Fly AeroGo and stay at the Holiday Inn."}
	o := newTestOrchestrator(t, flightAgent(), hotelAgent(), WithGenerator(gen))

	plan, err := o.PlanTrip(context.Background(), trip())
	if err != nil {
		t.Fatalf("PlanTrip() error = %v", err)
	}
	if plan.Status != nodex.PlanStatusCoordinated || plan.Narrative != gen.reply {
		t.Fatalf("plan = %+v", plan)
	}
	if !strings.HasPrefix(gen.preamble, "You are a Travel Orchestrator") {
		t.Fatalf("preamble = %q", gen.preamble)
	}
	if !strings.Contains(gen.prompt, "Flight agent (task flight-task-1):") {
		t.Fatalf("prompt = %q", gen.prompt)
	}
}

func TestPlanTripGeneratorFailureKeepsPlanned(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: contractx.ErrModelInvoke}
	o := newTestOrchestrator(t, flightAgent(), hotelAgent(), WithGenerator(gen))

	plan, err := o.PlanTrip(context.Background(), trip())
	if err != nil {
		t.Fatalf("PlanTrip() error = %v", err)
	}
	if plan.Status != nodex.PlanStatusPlanned || !strings.HasPrefix(plan.Narrative, "Coordinated plan with flight and hotel agents.") {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestPlanTripAllOrNothingFailsAndCancelsSibling(t *testing.T) {
	t.Parallel()

	flight := flightAgent()
	flight.send = func(context.Context, a2a.MessageSendParams) (a2a.Event, error) {
		return nil, errors.New("connection refused")
	}
	hotelCanceled := make(chan struct{})
	hotel := hotelAgent()
	hotel.send = func(ctx context.Context, _ a2a.MessageSendParams) (a2a.Event, error) {
		<-ctx.Done()
		close(hotelCanceled)
		return nil, ctx.Err()
	}
	o := newTestOrchestrator(t, flight, hotel)

	_, err := o.PlanTrip(context.Background(), trip())
	if !errors.Is(err, contractx.ErrAgentCall) {
		t.Fatalf("PlanTrip() error = %v, want ErrAgentCall", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("error = %v, want flight cause", err)
	}

	select {
	case <-hotelCanceled:
	case <-time.After(2 * time.Second):
		t.Fatal("hotel call was not canceled")
	}
}

func TestPlanTripAllOrNothingFailedTask(t *testing.T) {
	t.Parallel()

	flight := flightAgent()
	flight.send = func(context.Context, a2a.MessageSendParams) (a2a.Event, error) {
		msg := a2a.Message{Kind: a2a.KindMessage, Role: a2a.RoleAgent, Parts: []a2a.Part{a2a.TextPart("Flight processing failed: gateway down")}}
		return a2a.Task{Kind: a2a.KindTask, ID: "flight-task-9", Status: a2a.TaskStatus{State: a2a.TaskStateFailed, Message: &msg}}, nil
	}
	o := newTestOrchestrator(t, flight, hotelAgent())

	_, err := o.PlanTrip(context.Background(), trip())
	if !errors.Is(err, contractx.ErrAgentCall) {
		t.Fatalf("PlanTrip() error = %v, want ErrAgentCall", err)
	}
	if !strings.Contains(err.Error(), "Flight processing failed: gateway down") {
		t.Fatalf("error = %v", err)
	}
}

func TestPlanTripPartialRecordsWarnings(t *testing.T) {
	t.Parallel()

	flight := flightAgent()
	flight.send = func(context.Context, a2a.MessageSendParams) (a2a.Event, error) {
		return nil, errors.New("connection refused")
	}
	o := newTestOrchestrator(t, flight, hotelAgent(), WithJoinPolicy(nodex.JoinPartial))

	plan, err := o.PlanTrip(context.Background(), trip())
	if err != nil {
		t.Fatalf("PlanTrip() error = %v", err)
	}
	if len(plan.Warnings) != 1 || !strings.Contains(plan.Warnings[0], "flight agent") {
		t.Fatalf("warnings = %v", plan.Warnings)
	}
	if len(plan.Flights) != 0 || len(plan.Hotels) != 1 || plan.HotelTaskID != "hotel-task-1" {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestPlanTripPartialFailsWhenBothFail(t *testing.T) {
	t.Parallel()

	failing := func(context.Context, a2a.MessageSendParams) (a2a.Event, error) {
		return nil, errors.New("down")
	}
	flight, hotel := flightAgent(), hotelAgent()
	flight.send, hotel.send = failing, failing
	o := newTestOrchestrator(t, flight, hotel, WithJoinPolicy(nodex.JoinPartial))

	if _, err := o.PlanTrip(context.Background(), trip()); !errors.Is(err, contractx.ErrAgentCall) {
		t.Fatalf("PlanTrip() error = %v, want ErrAgentCall", err)
	}
}

func TestPlanTripCallTimeout(t *testing.T) {
	t.Parallel()

	hotel := hotelAgent()
	hotel.send = func(ctx context.Context, _ a2a.MessageSendParams) (a2a.Event, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	o := newTestOrchestrator(t, flightAgent(), hotel, WithCallTimeout(20*time.Millisecond))

	_, err := o.PlanTrip(context.Background(), trip())
	if !errors.Is(err, contractx.ErrAgentCall) || !strings.Contains(err.Error(), "deadline exceeded") {
		t.Fatalf("PlanTrip() error = %v, want hotel deadline", err)
	}
}

func TestPlanTripValidation(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, flightAgent(), hotelAgent())

	tests := []TripRequest{
		{To: "Paris", DepartureDate: "2025-05-01"},
		{From: "NYC", To: "Paris", DepartureDate: "05/01/2025"},
		{From: "NYC", To: "Paris", DepartureDate: "2025-05-08", ReturnDate: "2025-05-01"},
	}
	for _, req := range tests {
		if _, err := o.PlanTrip(context.Background(), req); !errors.Is(err, contractx.ErrValidation) {
			t.Errorf("PlanTrip(%+v) error = %v, want ErrValidation", req, err)
		}
	}
}

func TestChatRoutesByKeyword(t *testing.T) {
	t.Parallel()

	flight, hotel := flightAgent(), hotelAgent()
	gen := &fakeGenerator{reply: "Sure, let me help."}
	o := newTestOrchestrator(t, flight, hotel, WithGenerator(gen))

	reply, err := o.Chat(context.Background(), "I need accommodation in Rome")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	want := "Sure, let me help.\n\nI've coordinated with the Hotel Agent (Task: hotel-task-1) for detailed hotel assistance."
	if reply.Response != want || reply.TaskID != "hotel-task-1" || reply.Agent != "hotel" {
		t.Fatalf("reply = %+v", reply)
	}
	if hotel.lastPrompt() != "I need accommodation in Rome" || flight.lastPrompt() != "" {
		t.Fatalf("routing flight=%q hotel=%q", flight.lastPrompt(), hotel.lastPrompt())
	}

	reply, err = o.Chat(context.Background(), "Which hotel is near the airport if I fly in late?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Agent != "flight" {
		t.Fatalf("agent = %s, want flight to win", reply.Agent)
	}

	reply, err = o.Chat(context.Background(), "What is the weather like?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Response != "Sure, let me help." || reply.TaskID != "" {
		t.Fatalf("reply = %+v", reply)
	}

	if _, err := o.Chat(context.Background(), "   "); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Chat() error = %v, want ErrValidation", err)
	}
}

func TestStatusNeverFails(t *testing.T) {
	t.Parallel()

	hotel := hotelAgent()
	hotel.cardErr = errors.New("dial tcp: connection refused")
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	o := newTestOrchestrator(t, flightAgent(), hotel, WithClock(func() time.Time { return now }))

	st := o.Status(context.Background())
	if !st.FlightAgent.Available || st.FlightAgent.Name != "Flight Agent" || st.FlightAgent.Capabilities == nil || !st.FlightAgent.Capabilities.Streaming {
		t.Fatalf("flight status = %+v", st.FlightAgent)
	}
	if st.HotelAgent.Available || st.HotelAgent.Error == "" || st.HotelAgent.URL != "http://hotel.test" {
		t.Fatalf("hotel status = %+v", st.HotelAgent)
	}
	if !st.HotelAgent.LastCheck.Equal(now) {
		t.Fatalf("lastCheck = %v", st.HotelAgent.LastCheck)
	}
}

func TestHTTPHandlers(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, flightAgent(), hotelAgent())
	srv := httptest.NewServer(o.Handler())
	t.Cleanup(srv.Close)

	body, _ := json.Marshal(trip())
	res, err := srv.Client().Post(srv.URL+"/api/travel/plan", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST plan error = %v", err)
	}
	var plan TravelPlan
	if err := json.NewDecoder(res.Body).Decode(&plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK || plan.TripID != "trip-1" {
		t.Fatalf("status=%d plan=%+v", res.StatusCode, plan)
	}

	res, err = srv.Client().Post(srv.URL+"/api/travel/plan", "application/json", strings.NewReader(`{"from":"NYC"}`))
	if err != nil {
		t.Fatalf("POST plan error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid plan status = %d, want 400", res.StatusCode)
	}

	res, err = srv.Client().Post(srv.URL+"/api/travel/chat", "application/json", strings.NewReader(`{"message":"book a hotel"}`))
	if err != nil {
		t.Fatalf("POST chat error = %v", err)
	}
	var reply ChatReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	res.Body.Close()
	if !strings.Contains(reply.Response, "Hotel Agent (Task: hotel-task-1)") {
		t.Fatalf("chat reply = %+v", reply)
	}

	res, err = srv.Client().Get(srv.URL + "/api/travel/agents/status")
	if err != nil {
		t.Fatalf("GET status error = %v", err)
	}
	var st AgentsStatus
	if err := json.NewDecoder(res.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	res.Body.Close()
	if !st.FlightAgent.Available || !st.HotelAgent.Available {
		t.Fatalf("status = %+v", st)
	}

	res, err = srv.Client().Get(srv.URL + "/api/travel/plan")
	if err != nil {
		t.Fatalf("GET plan error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET plan status = %d, want 405", res.StatusCode)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{JoinPolicy: "partial", CallTimeout: time.Second}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := (Config{JoinPolicy: "best-effort", CallTimeout: time.Second}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
}
