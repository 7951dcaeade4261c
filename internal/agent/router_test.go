package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"healthcare-agent/internal/models"
)

func TestBuildResult_UsesLastInvocation(t *testing.T) {
	rec := &Recorder{}
	rec.Record(Invocation{
		Tool:    models.SQLToolName,
		Answer:  "There are 4 patients.",
		Details: "SELECT COUNT(*) FROM patients",
		Raw:     "Source: Database\nAnswer: There are 4 patients.",
	})

	res := buildResult("There are 4 patients in the database.", rec)

	assert.Equal(t, "There are 4 patients.", res.CleanAnswer)
	assert.Equal(t, models.SQLToolName, res.Tool)
	assert.Equal(t, "SELECT COUNT(*) FROM patients", res.ToolDetails)
	assert.Equal(t, "There are 4 patients in the database.", res.RawOutput)
}

func TestBuildResult_NoToolRan(t *testing.T) {
	res := buildResult("Hello! Ask me about documents or the database.", &Recorder{})

	assert.Equal(t, "Hello! Ask me about documents or the database.", res.CleanAnswer)
	assert.Equal(t, "None", res.Tool)
	assert.Equal(t, "No tool used", res.ToolDetails)
}

func TestRecorder_LastWinsAcrossInvocations(t *testing.T) {
	rec := &Recorder{}

	_, ok := rec.Last()
	assert.False(t, ok)

	rec.Record(Invocation{Tool: models.DocToolName})
	rec.Record(Invocation{Tool: models.SQLToolName})

	inv, ok := rec.Last()
	assert.True(t, ok)
	assert.Equal(t, models.SQLToolName, inv.Tool)
}
