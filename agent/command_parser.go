package agent

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Command is a single-parameter update parsed from one utterance. It is
// consumed immediately by the hybrid executor and then discarded.
type Command struct {
	Parameter string
	Value     interface{}
}

// parseRule pairs an anchored pattern with its command builder. Rules are
// tried in order; the first match wins.
type parseRule struct {
	re    *regexp.Regexp
	build func(groups []string) *Command
}

// CommandParser matches utterances against the fixed hybrid grammar.
type CommandParser struct {
	rules  []parseRule
	logger func(string)
}

const numberPattern = `[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`

// NewCommandParser compiles the grammar once.
func NewCommandParser(logger func(string)) *CommandParser {
	p := &CommandParser{logger: logger}
	p.rules = []parseRule{
		{
			re: regexp.MustCompile(`^(show|hide) (median|outliers)$`),
			build: func(g []string) *Command {
				return &Command{Parameter: "show_" + g[2], Value: g[1] == "show"}
			},
		},
		{
			re: regexp.MustCompile(`^(median|outliers) color ([a-z][a-z0-9_-]*)$`),
			build: func(g []string) *Command {
				return &Command{Parameter: g[1] + "_color", Value: g[2]}
			},
		},
		{
			re: regexp.MustCompile(`^(median|outliers) width (` + numberPattern + `)$`),
			build: func(g []string) *Command {
				return numericCommand(g[1]+"_width", g[2])
			},
		},
		{
			re: regexp.MustCompile(`^(median|outliers) alpha (` + numberPattern + `)$`),
			build: func(g []string) *Command {
				return numericCommand(g[1]+"_alpha", g[2])
			},
		},
		{
			re: regexp.MustCompile(`^colormap ([a-z][a-z0-9_-]*)$`),
			build: func(g []string) *Command {
				return &Command{Parameter: "colormap", Value: g[1]}
			},
		},
		{
			// A hybrid percentile update always collapses to a single band.
			// A previous multi-band set is discarded on purpose; the tests
			// pin this down.
			re: regexp.MustCompile(`^percentiles? (` + numberPattern + `)$`),
			build: func(g []string) *Command {
				v, ok := finiteFloat(g[1])
				if !ok {
					return nil
				}
				return &Command{Parameter: "percentiles", Value: []float64{v}}
			},
		},
		{
			re: regexp.MustCompile(`^isovalue (` + numberPattern + `)$`),
			build: func(g []string) *Command {
				return numericCommand("isovalue", g[1])
			},
		},
		{
			re: regexp.MustCompile(`^scale (` + numberPattern + `)$`),
			build: func(g []string) *Command {
				return numericCommand("scale", g[1])
			},
		},
		{
			re: regexp.MustCompile(`^alpha (` + numberPattern + `)$`),
			build: func(g []string) *Command {
				return numericCommand("alpha", g[1])
			},
		},
		{
			re: regexp.MustCompile(`^method (mbd|bd|fast)$`),
			build: func(g []string) *Command {
				return &Command{Parameter: "method", Value: g[1]}
			},
		},
		{
			re: regexp.MustCompile(`^(inline|quick|detailed) summary$`),
			build: func(g []string) *Command {
				return &Command{Parameter: "report_type", Value: g[1]}
			},
		},
	}
	return p
}

func (p *CommandParser) log(msg string) {
	if p.logger != nil {
		p.logger(msg)
	}
}

// Parse matches one utterance against the grammar. It returns nil on no
// match and has no side effects.
func (p *CommandParser) Parse(utterance string) *Command {
	normalized := normalizeUtterance(utterance)
	if normalized == "" {
		return nil
	}
	for _, rule := range p.rules {
		groups := rule.re.FindStringSubmatch(normalized)
		if groups == nil {
			continue
		}
		cmd := rule.build(groups)
		if cmd == nil {
			continue
		}
		p.log(fmt.Sprintf("[PARSER] Matched %q -> %s", normalized, cmd.Parameter))
		return cmd
	}
	return nil
}

// normalizeUtterance lowercases and collapses whitespace runs.
func normalizeUtterance(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func numericCommand(param, token string) *Command {
	v, ok := finiteFloat(token)
	if !ok {
		return nil
	}
	return &Command{Parameter: param, Value: v}
}

func finiteFloat(token string) (float64, bool) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
