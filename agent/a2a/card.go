package a2a

import (
	"fmt"
	"os"
	"strings"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
	"gopkg.in/yaml.v3"
)

const (
	AgentCardPath      = "/.well-known/agent-card.json"
	TransportJSONRPC   = "JSONRPC"
	defaultCardVersion = "1.0.0"
)

type AgentCapabilities struct {
	Streaming              bool `json:"streaming" yaml:"streaming"`
	PushNotifications      bool `json:"pushNotifications" yaml:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory" yaml:"stateTransitionHistory"`
}

type AgentSkill struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty" yaml:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty" yaml:"outputModes,omitempty"`
}

type AgentCard struct {
	ProtocolVersion                   string            `json:"protocolVersion" yaml:"protocolVersion"`
	Name                              string            `json:"name" yaml:"name"`
	Description                       string            `json:"description" yaml:"description"`
	URL                               string            `json:"url" yaml:"url"`
	PreferredTransport                string            `json:"preferredTransport,omitempty" yaml:"preferredTransport,omitempty"`
	Version                           string            `json:"version" yaml:"version"`
	Capabilities                      AgentCapabilities `json:"capabilities" yaml:"capabilities"`
	DefaultInputModes                 []string          `json:"defaultInputModes" yaml:"defaultInputModes"`
	DefaultOutputModes                []string          `json:"defaultOutputModes" yaml:"defaultOutputModes"`
	Skills                            []AgentSkill      `json:"skills" yaml:"skills"`
	SupportsAuthenticatedExtendedCard bool              `json:"supportsAuthenticatedExtendedCard,omitempty" yaml:"supportsAuthenticatedExtendedCard,omitempty"`
}

func (c AgentCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: agent card name is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("%w: agent card %s has no url", contractx.ErrValidation, c.Name)
	}
	seen := make(map[string]struct{}, len(c.Skills))
	for _, s := range c.Skills {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: agent card %s has a skill without id", contractx.ErrValidation, c.Name)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: agent card %s repeats skill %s", contractx.ErrValidation, c.Name, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// SkillIDs lists the declared skill ids in order.
func (c AgentCard) SkillIDs() []string {
	ids := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		ids = append(ids, s.ID)
	}
	return ids
}

// LoadCardOverride reads a YAML card from path and lays its non-empty fields
// over base. An empty path returns base unchanged.
func LoadCardOverride(base AgentCard, path string) (AgentCard, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AgentCard{}, fmt.Errorf("read agent card %s: %w", path, err)
	}
	return MergeCardYAML(base, data)
}

func MergeCardYAML(base AgentCard, data []byte) (AgentCard, error) {
	var override AgentCard
	if err := yaml.Unmarshal(data, &override); err != nil {
		return AgentCard{}, fmt.Errorf("%w: decode agent card yaml: %v", contractx.ErrValidation, err)
	}

	var flags map[string]any
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return AgentCard{}, fmt.Errorf("%w: decode agent card yaml: %v", contractx.ErrValidation, err)
	}

	out := base
	setString(&out.ProtocolVersion, override.ProtocolVersion)
	setString(&out.Name, override.Name)
	setString(&out.Description, override.Description)
	setString(&out.URL, override.URL)
	setString(&out.PreferredTransport, override.PreferredTransport)
	setString(&out.Version, override.Version)
	if _, ok := flags["capabilities"]; ok {
		out.Capabilities = override.Capabilities
	}
	if len(override.DefaultInputModes) > 0 {
		out.DefaultInputModes = override.DefaultInputModes
	}
	if len(override.DefaultOutputModes) > 0 {
		out.DefaultOutputModes = override.DefaultOutputModes
	}
	if len(override.Skills) > 0 {
		out.Skills = override.Skills
	}
	if _, ok := flags["supportsAuthenticatedExtendedCard"]; ok {
		out.SupportsAuthenticatedExtendedCard = override.SupportsAuthenticatedExtendedCard
	}
	if out.Version == "" {
		out.Version = defaultCardVersion
	}
	if err := out.Validate(); err != nil {
		return AgentCard{}, err
	}
	return out, nil
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
