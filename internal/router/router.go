// Package router classifies a question into a task type and an ordered step
// plan using keyword heuristics. Rules are evaluated top to bottom; the first
// match wins and anything unmatched falls through to plain text QA.
package router

import (
	"strings"

	"visionrag/internal/domain"
)

// Rule is one ordered classification rule. Lowercase keywords are matched
// against the lowercased question; Literal keywords are matched against the
// question as written, which keeps CJK and domain terms case-exact.
type Rule struct {
	Task      domain.TaskType `yaml:"task"`
	Lowercase []string        `yaml:"lowercase"`
	Literal   []string        `yaml:"literal"`
	Steps     []string        `yaml:"steps"`
}

// Router evaluates an ordered rule list loaded once at startup.
type Router struct {
	rules []Rule
}

func New(rules []Rule) *Router {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Router{rules: rules}
}

// DefaultRules returns the built-in classification table, in priority order:
// vision, table, calculation. Plain text QA is the implicit fallback.
func DefaultRules() []Rule {
	return []Rule{
		{
			Task:      domain.TaskVisionQA,
			Lowercase: []string{"figure", "diagram", "image"},
			Literal:   []string{"圖", "figure", "arrow", "此圖", "上圖", "flow"},
			Steps:     []string{"retrieve_image", "vision_parse", "synthesize", "cite"},
		},
		{
			Task:      domain.TaskTableToCSV,
			Lowercase: []string{"table", "csv"},
			Literal:   []string{"表格", "table", "csv", "欄位", "規格"},
			Steps:     []string{"table_extract", "synthesize", "cite"},
		},
		{
			Task:      domain.TaskCalc,
			Lowercase: []string{"avg", "sum"},
			Literal:   []string{"加總", "平均", "mm", "換算", "數值"},
			Steps:     []string{"retrieve", "python_calc", "synthesize", "cite"},
		},
	}
}

// Route classifies the question. It is pure and deterministic: the same
// question always yields the same plan.
func (r *Router) Route(question string) domain.Plan {
	lowered := strings.ToLower(question)
	for _, rule := range r.rules {
		if matchAny(lowered, rule.Lowercase) || matchAny(question, rule.Literal) {
			return domain.Plan{Task: rule.Task, Steps: rule.Steps}
		}
	}
	return domain.Plan{
		Task:  domain.TaskTextQA,
		Steps: []string{"retrieve", "synthesize", "cite"},
	}
}

func matchAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
