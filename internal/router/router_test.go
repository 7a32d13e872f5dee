package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"visionrag/internal/domain"
)

func TestRouteTaskTypes(t *testing.T) {
	r := New(nil)

	tests := []struct {
		question string
		task     domain.TaskType
	}{
		{"請解釋第3頁示意圖", domain.TaskVisionQA},
		{"What does the figure on page 2 show?", domain.TaskVisionQA},
		{"整理成csv", domain.TaskTableToCSV},
		{"List the product table columns", domain.TaskTableToCSV},
		{"平均價格是多少", domain.TaskCalc},
		{"What is the avg close?", domain.TaskCalc},
		{"公司歷史", domain.TaskTextQA},
		{"Tell me about the company", domain.TaskTextQA},
	}

	for _, tt := range tests {
		plan := r.Route(tt.question)
		assert.Equal(t, tt.task, plan.Task, "question: %s", tt.question)
	}
}

func TestRouteDeterministic(t *testing.T) {
	r := New(nil)
	for i := 0; i < 5; i++ {
		plan := r.Route("請解釋第3頁示意圖")
		assert.Equal(t, domain.TaskVisionQA, plan.Task)
		assert.Equal(t, []string{"retrieve_image", "vision_parse", "synthesize", "cite"}, plan.Steps)
	}
}

func TestRoutePriorityOrder(t *testing.T) {
	r := New(nil)

	// Mentions both a figure and a table: vision wins, it is first.
	plan := r.Route("the figure and the table")
	assert.Equal(t, domain.TaskVisionQA, plan.Task)
}

func TestRouteStepPlans(t *testing.T) {
	r := New(nil)

	assert.Equal(t, []string{"table_extract", "synthesize", "cite"}, r.Route("整理成csv").Steps)
	assert.Equal(t, []string{"retrieve", "python_calc", "synthesize", "cite"}, r.Route("平均價格是多少").Steps)
	assert.Equal(t, []string{"retrieve", "synthesize", "cite"}, r.Route("公司歷史").Steps)
}

func TestRouteCustomRules(t *testing.T) {
	custom := []Rule{
		{
			Task:      domain.TaskCalc,
			Lowercase: []string{"total"},
			Steps:     []string{"retrieve", "python_calc", "synthesize", "cite"},
		},
	}
	r := New(custom)

	assert.Equal(t, domain.TaskCalc, r.Route("What is the total?").Task)
	// Built-in vision keywords no longer apply under a custom table.
	assert.Equal(t, domain.TaskTextQA, r.Route("explain the figure").Task)
}

func TestRouteCaseHandling(t *testing.T) {
	r := New(nil)

	// English keywords match case-insensitively.
	assert.Equal(t, domain.TaskVisionQA, r.Route("Explain the DIAGRAM").Task)
	// Literal keywords match as written.
	assert.Equal(t, domain.TaskCalc, r.Route("把數值加總一下").Task)
}
