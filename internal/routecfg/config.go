// Package routecfg decodes a YAML/JSON router configuration document into
// a constructed router.Router backed by a shared tagdict.Dictionary.
package routecfg

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/invopop/yaml"

	"github.com/mapgrid/routecore/internal/router"
	"github.com/mapgrid/routecore/internal/tagdict"
)

// RuleConfig is one rule's on-disk representation.
type RuleConfig struct {
	RequireTags    map[string]string `json:"requireTags,omitempty"`
	ForbidTags     map[string]string `json:"forbidTags,omitempty"`
	OnlyTags       []string          `json:"onlyTags,omitempty"`
	OnlyNotTags    []string          `json:"onlyNotTags,omitempty"`
	Parameters     []string          `json:"parameters,omitempty"`
	Expressions    []ExpressionConfig `json:"expressions,omitempty"`
	SelectType     string            `json:"selectType"`
	SelectValue    string            `json:"selectValue"`
}

// ExpressionConfig is one LE/GE numeric sub-expression's on-disk form.
type ExpressionConfig struct {
	Op       string `json:"op"`
	ValueType string `json:"valueType"`
	LHS      string `json:"lhs"`
	RHS      string `json:"rhs"`
}

// AttributeConfig is the rule list for one attribute kind.
type AttributeConfig struct {
	Kind  string       `json:"kind"`
	Rules []RuleConfig `json:"rules"`
}

// RouterConfig is the full on-disk router configuration document.
type RouterConfig struct {
	Attributes        map[string]string `json:"attributes,omitempty"`
	ImpassableRoadIDs []uint64          `json:"impassableRoadIds,omitempty"`
	AttributeContexts []AttributeConfig `json:"attributeContexts"`
}

// Load reads path (YAML or JSON, auto-detected by invopop/yaml's
// superset decoder) and builds a router.Router against a fresh
// tagdict.Dictionary. A nil logger defaults to slog.Default().
func Load(path string, logger *slog.Logger) (*router.Router, *tagdict.Dictionary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("routecfg: read %s: %w", path, err)
	}

	var cfg RouterConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, nil, fmt.Errorf("routecfg: parse %s: %w", path, err)
	}

	dict := tagdict.NewDictionary()
	r, err := Build(cfg, dict, logger)
	if err != nil {
		return nil, nil, err
	}
	return r, dict, nil
}

// Encode marshals cfg back to disk in the requested format ("yaml" or
// "json"), mirroring the teacher's encodeConfig format switch.
func Encode(cfg RouterConfig, format string) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(cfg)
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	default:
		return nil, fmt.Errorf("routecfg: unknown format: %s", format)
	}
}

// Build constructs a router.Router from an already-decoded RouterConfig.
// Malformed rules are logged and skipped rather than failing the whole
// load, per the configuration-error handling rule: the evaluator keeps
// running on whatever rules did parse.
func Build(cfg RouterConfig, dict *tagdict.Dictionary, logger *slog.Logger) (*router.Router, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := router.New(dict, logger)

	for key, value := range cfg.Attributes {
		r.SetAttribute(key, value)
	}
	for _, id := range cfg.ImpassableRoadIDs {
		r.AddImpassableRoad(id)
	}

	for _, ac := range cfg.AttributeContexts {
		kind, ok := parseKind(ac.Kind)
		if !ok {
			logger.Warn("routecfg: skipping attribute context with unknown kind", "kind", ac.Kind)
			continue
		}

		var rules []*router.Rule
		for i, rc := range ac.Rules {
			rule, err := buildRule(dict, rc)
			if err != nil {
				logger.Warn("routecfg: skipping malformed rule", "kind", ac.Kind, "index", i, "error", err)
				continue
			}
			rules = append(rules, rule)
		}

		r.SetAttributeContext(&router.AttributeContext{Kind: kind, Rules: rules})
	}

	return r, nil
}

func buildRule(dict *tagdict.Dictionary, rc RuleConfig) (*router.Rule, error) {
	kind, ok := parseValueKind(rc.SelectType)
	if !ok {
		return nil, fmt.Errorf("unknown selectType %q", rc.SelectType)
	}

	b := router.NewRuleBuilder(dict)
	for tag, value := range rc.RequireTags {
		b.RequireTag(tag, value)
	}
	for tag, value := range rc.ForbidTags {
		b.ForbidTag(tag, value)
	}
	for _, tag := range rc.OnlyTags {
		b.RequireTagPresence(tag)
	}
	for _, tag := range rc.OnlyNotTags {
		b.ForbidTagPresence(tag)
	}
	if len(rc.Parameters) > 0 {
		b.WithParameters(rc.Parameters...)
	}
	for _, ec := range rc.Expressions {
		op, ok := parseOp(ec.Op)
		if !ok {
			return nil, fmt.Errorf("unknown expression op %q", ec.Op)
		}
		exprKind, ok := parseValueKind(ec.ValueType)
		if !ok {
			return nil, fmt.Errorf("unknown expression valueType %q", ec.ValueType)
		}
		b.AddExpression(op, exprKind, ec.LHS, ec.RHS)
	}

	return b.Select(rc.SelectValue, kind).Build(), nil
}

func parseKind(s string) (router.AttributeKind, bool) {
	switch router.AttributeKind(s) {
	case router.Access, router.Oneway, router.Obstacles, router.RoutingObstacles,
		router.RoadSpeed, router.RoadPriorities, router.PenaltyTransition:
		return router.AttributeKind(s), true
	default:
		return "", false
	}
}

func parseValueKind(s string) (router.ValueKind, bool) {
	switch router.ValueKind(s) {
	case router.Speed, router.Weight, router.Length, router.Plain:
		return router.ValueKind(s), true
	default:
		return "", false
	}
}

func parseOp(s string) (router.ExprOp, bool) {
	switch s {
	case "LE":
		return router.LE, true
	case "GE":
		return router.GE, true
	default:
		return 0, false
	}
}
