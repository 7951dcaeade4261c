package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/tools/sqldatabase"

	"healthcare-agent/internal/models"
)

type fakeEngine struct {
	cols []string
	rows [][]string
	err  error

	executed []string
}

func (f *fakeEngine) Dialect() string { return "sqlite3" }

func (f *fakeEngine) Query(_ context.Context, query string, _ ...any) ([]string, [][]string, error) {
	f.executed = append(f.executed, query)
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.cols, f.rows, nil
}

func (f *fakeEngine) TableNames(_ context.Context) ([]string, error) {
	return []string{"patients", "visits", "prescriptions", "medications"}, nil
}

func (f *fakeEngine) TableInfo(_ context.Context, _ string) (string, error) {
	return "CREATE TABLE patients (patient_id INTEGER, name TEXT, age INTEGER, gender TEXT)", nil
}

func (f *fakeEngine) Close() error { return nil }

func TestLooksLikeSQL(t *testing.T) {
	assert.True(t, looksLikeSQL("SELECT * FROM patients"))
	assert.True(t, looksLikeSQL("  select count(*) from visits"))
	assert.True(t, looksLikeSQL("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.True(t, looksLikeSQL("PRAGMA table_info(patients)"))
	assert.True(t, looksLikeSQL("explain query plan select 1"))

	assert.False(t, looksLikeSQL("How many patients have hypertension?"))
	assert.False(t, looksLikeSQL("List medications for patient 3"))
	assert.False(t, looksLikeSQL(""))
}

func TestDBTool_DirectSQLNeverInvokesChain(t *testing.T) {
	engine := &fakeEngine{cols: []string{"count"}, rows: [][]string{{"4"}}}
	rec := &Recorder{}
	tool := newDBTool(nil, engine, rec)

	chainCalled := false
	tool.runChain = func(_ context.Context, _ *sqldatabase.SQLDatabase, _ string) (string, error) {
		chainCalled = true
		return "", nil
	}

	query := "SELECT COUNT(*) FROM patients WHERE age > 60"
	reply, err := tool.Call(context.Background(), query)
	require.NoError(t, err)

	assert.False(t, chainCalled)
	assert.Equal(t, []string{query}, engine.executed)
	assert.Contains(t, reply, "direct SQL execution")
	assert.Contains(t, reply, "SQL: "+query)

	inv, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, models.SQLToolName, inv.Tool)
	assert.Equal(t, query, inv.Details)
	assert.Contains(t, inv.Answer, "count")
	assert.Contains(t, inv.Answer, "4")
}

func TestDBTool_ChainSQLIsCaptured(t *testing.T) {
	engine := &fakeEngine{cols: []string{"n"}, rows: [][]string{{"2"}}}
	rec := &Recorder{}
	tool := newDBTool(nil, engine, rec)

	generated := "SELECT COUNT(*) AS n FROM visits WHERE LOWER(reason) LIKE '%hypertension%'"
	tool.runChain = func(ctx context.Context, db *sqldatabase.SQLDatabase, question string) (string, error) {
		assert.Contains(t, question, "How many patients have hypertension?")
		// the question carries the medical-assistant steering ahead of the user text
		assert.Contains(t, question, "medical data assistant")
		assert.Contains(t, question, "visits.reason")
		assert.Contains(t, question, "generate SQL yourself")
		// the chain executes its generated SQL through the database wrapper
		if _, err := db.Query(ctx, generated); err != nil {
			return "", err
		}
		return "2 patients have hypertension.", nil
	}

	reply, err := tool.Call(context.Background(), "How many patients have hypertension?")
	require.NoError(t, err)

	assert.Contains(t, reply, "SQL: "+generated)

	inv, ok := rec.Last()
	require.True(t, ok)
	// the captured SQL equals the last statement executed for this request
	assert.Equal(t, generated, inv.Details)
	assert.Equal(t, "2 patients have hypertension.", inv.Answer)
}

func TestDBTool_NoStatementExecuted(t *testing.T) {
	rec := &Recorder{}
	tool := newDBTool(nil, &fakeEngine{}, rec)
	tool.runChain = func(_ context.Context, _ *sqldatabase.SQLDatabase, _ string) (string, error) {
		return "I could not answer that from the database.", nil
	}

	reply, err := tool.Call(context.Background(), "Tell me a joke")
	require.NoError(t, err)

	assert.Contains(t, reply, "SQL: N/A")
}

func TestDBTool_ErrorsDegradeToFormattedAnswer(t *testing.T) {
	engine := &fakeEngine{err: errors.New("no such table: foo")}
	rec := &Recorder{}
	tool := newDBTool(nil, engine, rec)

	reply, err := tool.Call(context.Background(), "SELECT * FROM foo")

	// tool-level failures are answers, not errors
	require.NoError(t, err)
	assert.Contains(t, reply, "Error while querying database: no such table: foo")

	inv, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, models.SQLToolName, inv.Tool)
	assert.Contains(t, inv.Answer, "no such table")
}

func TestDBTool_ChainErrorDegradesToFormattedAnswer(t *testing.T) {
	rec := &Recorder{}
	tool := newDBTool(nil, &fakeEngine{}, rec)
	tool.runChain = func(_ context.Context, _ *sqldatabase.SQLDatabase, _ string) (string, error) {
		return "", errors.New("model unavailable")
	}

	reply, err := tool.Call(context.Background(), "How many visits last month?")

	require.NoError(t, err)
	assert.Contains(t, reply, "Error while querying database: model unavailable")
}
