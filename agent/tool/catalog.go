package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/go-playground/validator/v10"
	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

// Handler executes one tool with its raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is a named, schema-described operation.
type Tool struct {
	Name        string
	Description string
	Params      map[string]*schema.ParameterInfo
	Handler     Handler
}

// Info renders the tool for eino tool-calling chat models.
func (t Tool) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        t.Name,
		Desc:        t.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(t.Params),
	}
}

// Descriptor is the wire form of a tool returned by tools/list.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (t Tool) Descriptor() Descriptor {
	props := make(map[string]Property, len(t.Params))
	required := make([]string, 0, len(t.Params))
	for name, p := range t.Params {
		if p == nil {
			continue
		}
		props[name] = Property{Type: string(p.Type), Description: p.Desc}
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	return Descriptor{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: InputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

// Catalog is an immutable set of tools keyed by name.
type Catalog struct {
	tools []Tool
	index map[string]int
}

func NewCatalog(tools ...Tool) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(tools))}
	for _, t := range tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool name is required", contractx.ErrValidation)
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("%w: tool %s has no handler", contractx.ErrValidation, name)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate tool %s", contractx.ErrValidation, name)
		}
		c.index[name] = len(c.tools)
		c.tools = append(c.tools, t)
	}
	return c, nil
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		names = append(names, t.Name)
	}
	return names
}

func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Descriptor())
	}
	return out
}

func (c *Catalog) Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(c.tools))
	for _, t := range c.tools {
		out = append(out, t.Info())
	}
	return out
}

// Call runs the named tool. Unknown names fail with ErrUnknownTool.
func (c *Catalog) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	idx, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, name)
	}
	return c.tools[idx].Handler(ctx, args)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Bind adapts a typed handler. Arguments are decoded into A and validated
// with its `validate` tags before fn runs.
func Bind[A any](fn func(ctx context.Context, args A) (any, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			if err := json.Unmarshal(trimmed, &args); err != nil {
				return nil, fmt.Errorf("%w: %v", contractx.ErrInvalidArguments, err)
			}
		}

		if err := validate.Struct(args); err != nil {
			return nil, fmt.Errorf("%w: %s", contractx.ErrInvalidArguments, describeValidation(err))
		}
		return fn(ctx, args)
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
