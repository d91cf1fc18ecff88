// Package specialist holds the flight and hotel agent skills and their cards.
package specialist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	taskx "github.com/tanpawarit/travel-agent-mesh/agent/task"
)

// domain turns message text into tool calls and tool results into replies.
type domain interface {
	searchCall(text string) (string, any)
	bookCall(text string) (string, any, error)
	summarize(tool string, raw json.RawMessage) (taskx.Result, error)
	help() string
}

var _ taskx.Skill = (*Skill)(nil)

// Skill maps an intent to a gateway tool call and formats the outcome.
type Skill struct {
	agent  contractx.AgentType
	tools  contractx.ToolCaller
	domain domain
	runner compose.Runnable[skillInput, *skillOutput]
}

func NewFlightSkill(ctx context.Context, tools contractx.ToolCaller) (*Skill, error) {
	return newSkill(ctx, contractx.AgentTypeFlight, tools, flightDomain{})
}

func NewHotelSkill(ctx context.Context, tools contractx.ToolCaller) (*Skill, error) {
	return newSkill(ctx, contractx.AgentTypeHotel, tools, hotelDomain{})
}

func newSkill(ctx context.Context, agent contractx.AgentType, tools contractx.ToolCaller, d domain) (*Skill, error) {
	if tools == nil {
		return nil, fmt.Errorf("%w: tool caller is required for %s skill", contractx.ErrValidation, agent)
	}

	s := &Skill{agent: agent, tools: tools, domain: d}
	runner, err := compileSkillGraph(ctx, s)
	if err != nil {
		return nil, err
	}
	s.runner = runner
	return s, nil
}

func (s *Skill) Run(ctx context.Context, intent contractx.Intent, text string) (taskx.Result, error) {
	out, err := s.runner.Invoke(ctx, skillInput{Intent: intent, Text: text})
	if err != nil {
		return taskx.Result{}, err
	}
	if out == nil {
		return taskx.Result{}, fmt.Errorf("%s skill produced no output", s.agent)
	}
	return out.Result, out.Err
}

func (s *Skill) planCall(in skillInput) *callPlan {
	switch in.Intent {
	case contractx.IntentSearch:
		tool, args := s.domain.searchCall(in.Text)
		return &callPlan{Tool: tool, Args: args}
	case contractx.IntentBook:
		tool, args, err := s.domain.bookCall(in.Text)
		return &callPlan{Tool: tool, Args: args, Err: err}
	default:
		return &callPlan{}
	}
}

func decodeData(raw json.RawMessage) map[string]any {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}
