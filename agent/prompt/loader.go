package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

var (
	//go:embed template/orchestrator.txt
	orchestratorRaw string

	//go:embed template/synthesis.txt
	synthesisRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Orchestrator string
	synthesis    *template.Template
}

// SynthesisInput feeds the plan narrative prompt.
type SynthesisInput struct {
	From          string
	To            string
	DepartureDate string
	ReturnDate    string
	Preferences   string
	FlightTaskID  string
	HotelTaskID   string
	FlightSummary string
	HotelSummary  string
	Warnings      []string
}

// LoadPromptSet parses the embedded templates.
func LoadPromptSet() (PromptSet, error) {
	orchestrator := strings.TrimSpace(orchestratorRaw)
	if orchestrator == "" {
		return PromptSet{}, fmt.Errorf("%w: orchestrator preamble", contractx.ErrPromptMissing)
	}
	tmpl, err := template.New("synthesis").Parse(strings.TrimSpace(synthesisRaw))
	if err != nil {
		return PromptSet{}, fmt.Errorf("%w: parse synthesis template: %v", contractx.ErrPromptMissing, err)
	}
	return PromptSet{Orchestrator: orchestrator, synthesis: tmpl}, nil
}

func (p PromptSet) Synthesis(in SynthesisInput) (string, error) {
	if p.synthesis == nil {
		return "", fmt.Errorf("%w: synthesis template", contractx.ErrPromptMissing)
	}
	var sb strings.Builder
	if err := p.synthesis.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("render synthesis prompt: %w", err)
	}
	return sb.String(), nil
}
