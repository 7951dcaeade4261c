package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/sqldatabase"

	"healthcare-agent/internal/models"
	"healthcare-agent/internal/store"
)

const dbSourceLine = "Source: Database (SQLite: healthcare.db)"

var sqlKeywords = []string{"select", "with", "pragma", "explain", "insert", "update", "delete"}

// looksLikeSQL reports whether the question lexically starts with an SQL
// keyword, in which case it is executed verbatim.
func looksLikeSQL(q string) bool {
	lower := strings.ToLower(strings.TrimSpace(q))
	for _, kw := range sqlKeywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}

// dbTool answers questions about the healthcare database. SQL input runs
// directly; natural language goes through the NL-to-SQL chain, with the
// executed statement captured by a per-request recording engine.
type dbTool struct {
	llm    llms.Model
	engine sqldatabase.Engine
	rec    *Recorder

	// runChain is swappable in tests
	runChain func(ctx context.Context, db *sqldatabase.SQLDatabase, question string) (string, error)
}

var _ tools.Tool = (*dbTool)(nil)

func newDBTool(llm llms.Model, engine sqldatabase.Engine, rec *Recorder) *dbTool {
	t := &dbTool{llm: llm, engine: engine, rec: rec}
	t.runChain = t.runSQLChain
	return t
}

func (t *dbTool) Name() string {
	return models.SQLToolName
}

func (t *dbTool) Description() string {
	return models.SQLToolDescription
}

// Call never returns an error: database failures degrade into a formatted
// error answer so the router can still reply.
func (t *dbTool) Call(ctx context.Context, input string) (string, error) {
	q := strings.TrimSpace(input)

	if looksLikeSQL(q) {
		return t.runDirect(ctx, q), nil
	}

	recording := store.NewRecordingEngine(t.engine)
	db, err := sqldatabase.NewSQLDatabase(recording, nil)
	if err != nil {
		return t.errorReply(err), nil
	}

	question := models.SQLAssistantPrefix + "\n\n" + models.ForcedNLPreamble + "\n\nUser question:\n" + q
	answer, err := t.runChain(ctx, db, question)
	if err != nil {
		return t.errorReply(err), nil
	}

	generatedSQL := recording.LastQuery()
	if generatedSQL == "" {
		generatedSQL = "N/A"
	}

	raw := fmt.Sprintf("%s\nTool Used: %s\nSQL: %s\nAnswer: %s", dbSourceLine, models.SQLToolName, generatedSQL, answer)
	t.rec.Record(Invocation{
		Tool:    models.SQLToolName,
		Answer:  answer,
		Details: generatedSQL,
		Raw:     raw,
	})
	return raw, nil
}

// runDirect executes the statement verbatim; the NL-to-SQL chain is never
// built for this path.
func (t *dbTool) runDirect(ctx context.Context, q string) string {
	cols, rows, err := t.engine.Query(ctx, q)
	if err != nil {
		return t.errorReply(err)
	}

	answer := formatRows(cols, rows)
	raw := fmt.Sprintf("%s\nTool Used: %s (direct SQL execution)\nSQL: %s\nAnswer: %s", dbSourceLine, models.SQLToolName, q, answer)
	t.rec.Record(Invocation{
		Tool:    models.SQLToolName,
		Answer:  answer,
		Details: q,
		Raw:     raw,
	})
	return raw
}

func (t *dbTool) runSQLChain(ctx context.Context, db *sqldatabase.SQLDatabase, question string) (string, error) {
	chain := chains.NewSQLDatabaseChain(t.llm, 5, db)
	return chains.Run(ctx, chain, question)
}

func (t *dbTool) errorReply(err error) string {
	answer := fmt.Sprintf("Error while querying database: %v", err)
	raw := fmt.Sprintf("%s\nTool Used: %s\nAnswer: %s", dbSourceLine, models.SQLToolName, answer)
	t.rec.Record(Invocation{
		Tool:    models.SQLToolName,
		Answer:  answer,
		Details: "",
		Raw:     raw,
	})
	return raw
}

func formatRows(cols []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(cols, " | "))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(strings.Join(row, " | "))
	}
	return b.String()
}
