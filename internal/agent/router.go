package agent

import (
	"context"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
	"github.com/uptrace/bun"

	"healthcare-agent/internal/chromemdb"
	"healthcare-agent/internal/models"
	"healthcare-agent/internal/store"
)

// Result is the typed outcome of one routed question.
type Result struct {
	CleanAnswer string
	Tool        string
	ToolDetails string
	RawOutput   string
}

// Invocation records one tool run within a request.
type Invocation struct {
	Tool    string
	Answer  string
	Details string
	Raw     string
}

// Recorder collects tool invocations for a single request. Tools write into
// it instead of the endpoint parsing marker strings back out of their
// replies.
type Recorder struct {
	invocations []Invocation
}

func (r *Recorder) Record(inv Invocation) {
	r.invocations = append(r.invocations, inv)
}

// Last returns the most recent invocation, if any tool ran.
func (r *Recorder) Last() (Invocation, bool) {
	if len(r.invocations) == 0 {
		return Invocation{}, false
	}
	return r.invocations[len(r.invocations)-1], true
}

// Router dispatches a question to the document tool or the database tool via
// an OpenAI-functions agent. The components it holds are built once at
// startup and read-only afterwards; per-request state (tools, recorder,
// executor) is created inside Ask.
type Router struct {
	llm      llms.Model
	embedder embeddings.Embedder
	index    *chromemdb.VectorDBManager
	db       *bun.DB
	driver   string
	topK     int
}

func NewRouter(llm llms.Model, embedder embeddings.Embedder, index *chromemdb.VectorDBManager, db *bun.DB, driver string, topK int) *Router {
	if topK <= 0 {
		topK = 5
	}
	return &Router{
		llm:      llm,
		embedder: embedder,
		index:    index,
		db:       db,
		driver:   driver,
		topK:     topK,
	}
}

// Ask routes the question and returns the chosen tool's typed result.
func (rt *Router) Ask(ctx context.Context, query string) (*Result, error) {
	rec := &Recorder{}
	retriever := newIndexRetriever(rt.embedder, rt.index, rt.topK)
	docTool := newDocTool(rt.llm, retriever, rec)
	dbTool := newDBTool(rt.llm, store.NewEngine(rt.db, rt.driver), rec)

	routerAgent := agents.NewOpenAIFunctionsAgent(rt.llm,
		[]tools.Tool{docTool, dbTool},
		agents.NewOpenAIOption().WithSystemMessage(models.RouterSystemPrompt),
	)
	executor := agents.NewExecutor(routerAgent)

	output, err := chains.Run(ctx, executor, query)
	if err != nil {
		return nil, err
	}
	return buildResult(output, rec), nil
}

// buildResult assembles the response contract from the agent's final output
// and the recorded tool invocation. When no tool ran the final output is all
// there is.
func buildResult(output string, rec *Recorder) *Result {
	inv, ok := rec.Last()
	if !ok {
		return &Result{
			CleanAnswer: output,
			Tool:        "None",
			ToolDetails: "No tool used",
			RawOutput:   output,
		}
	}
	return &Result{
		CleanAnswer: inv.Answer,
		Tool:        inv.Tool,
		ToolDetails: inv.Details,
		RawOutput:   output,
	}
}
