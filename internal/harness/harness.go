package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/ontoql/internal/ontology"
	"github.com/roach88/ontoql/internal/querysql"
	"github.com/roach88/ontoql/internal/queryir"
	"github.com/roach88/ontoql/internal/store"
	"github.com/roach88/ontoql/internal/testutil"
	"github.com/roach88/ontoql/internal/translate"
)

// Harness executes the cases of one scenario.
type Harness struct {
	engine   *translate.Engine
	catalog  *store.Store
	compiler *querysql.Compiler
	logger   *slog.Logger
}

// Run executes a scenario with logs discarded.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunWithLogger(ctx, scenario, testutil.DiscardLogger())
}

// RunWithLogger executes a scenario and returns the result.
//
// Each scenario runs against a freshly loaded ontology and a fresh
// in-memory catalog with sequential ids, so results are reproducible.
//
// An error is returned only when the scenario cannot run at all; case
// failures are reported in the result.
func RunWithLogger(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	o, err := ontology.Load(scenario.Ontology)
	if err != nil {
		return nil, fmt.Errorf("failed to load ontology: %w", err)
	}
	a, err := ontology.NewAccessor(o)
	if err != nil {
		return nil, fmt.Errorf("failed to load ontology: %w", err)
	}

	eng, err := translate.New(a, translate.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	catalog, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequenceIDs("q")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory catalog: %w", err)
	}
	defer catalog.Close()

	h := &Harness{
		engine:   eng,
		catalog:  catalog,
		compiler: querysql.NewCompiler(),
		logger:   logger,
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cr, failures, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		result.Cases = append(result.Cases, cr)
		for _, f := range failures {
			result.AddError(fmt.Sprintf("case %s: %s", c.Name, f))
		}
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"cases", len(result.Cases),
		"pass", result.Pass,
	)
	return result, nil
}

// runCase translates one case and checks it. The returned error is
// reserved for catalog failures.
func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, []string, error) {
	cr := CaseResult{Name: c.Name}

	q, err := h.engine.Translate(ctx, c.Query)
	if err != nil {
		var terr *translate.Error
		if !errors.As(err, &terr) {
			return cr, nil, err
		}
		cr.Error = string(terr.Code)
		cr.Message = terr.Error()
		switch {
		case c.Expect == nil:
			return cr, []string{"unexpected error: " + cr.Message}, nil
		case c.Expect.Error != cr.Error:
			return cr, []string{fmt.Sprintf("expected error %s, got %s", c.Expect.Error, cr.Message)}, nil
		}
		return cr, nil, nil
	}

	rec, _, err := h.catalog.Save(ctx, c.Query, q)
	if err != nil {
		return cr, nil, err
	}
	cr.ID = rec.ID
	cr.Describe = queryir.Describe(q)
	cr.Props = describeProps(q)

	stmts, err := h.compiler.Compile(q)
	if err != nil {
		cr.SQLError = err.Error()
	}
	for _, st := range stmts {
		cr.SQL = append(cr.SQL, st.SQL)
	}

	h.logger.Debug("case translated", "case", c.Name, "id", cr.ID, "nodes", q.Len())

	if c.Expect != nil {
		return cr, []string{fmt.Sprintf("expected error %s, translation succeeded", c.Expect.Error)}, nil
	}
	return cr, EvaluateAssertions(q, cr, c.Assertions), nil
}

// describeProps renders the props of every EProp and EPropGroup node.
func describeProps(q *queryir.Query) []string {
	var lines []string
	for _, n := range q.Nodes() {
		switch v := n.(type) {
		case *queryir.EProp:
			lines = append(lines, fmt.Sprintf("%d %s", v.ID, queryir.DescribeProp(v.Prop)))
		case *queryir.EPropGroup:
			props := make([]string, len(v.Props))
			for i, p := range v.Props {
				props[i] = queryir.DescribeProp(p)
			}
			lines = append(lines, fmt.Sprintf("%d %s %s", v.ID, v.Quant, strings.Join(props, ", ")))
		}
	}
	return lines
}
