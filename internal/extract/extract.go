// Package extract evaluates an XPath expression against an HTML document and
// normalizes whatever the expression yields into a single line of text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

// ResultKind tags the shape of an evaluation result.
type ResultKind int

// Result shapes returned by Evaluate.
const (
	ResultEmpty ResultKind = iota
	ResultMulti
	ResultScalar
	ResultFailed
)

// Result is the outcome of evaluating a query against one document. Exactly
// one of Values (ResultMulti), Scalar (ResultScalar) or Err (ResultFailed) is
// meaningful.
type Result struct {
	Kind   ResultKind
	Values []string
	Scalar string
	Err    error
}

// Text normalizes the result into the single string recorded for a page.
// The boolean is false when nothing usable matched.
func (r Result) Text() (string, bool) {
	var text string
	switch r.Kind {
	case ResultMulti:
		text = strings.TrimSpace(strings.Join(r.Values, " "))
	case ResultScalar:
		text = strings.TrimSpace(r.Scalar)
	default:
		return "", false
	}
	if text == "" {
		return "", false
	}
	return text, true
}

// Evaluator applies one XPath expression to many documents. It is safe for
// concurrent use; a compile failure is kept and reported on every Evaluate
// call.
type Evaluator struct {
	query      string
	compileErr error
	// xpath.Expr carries iteration state, so each goroutine borrows its own.
	exprs sync.Pool
}

// NewEvaluator compiles query. Use Err to inspect compile failures up front.
func NewEvaluator(query string) *Evaluator {
	e := &Evaluator{query: query}
	if strings.TrimSpace(query) == "" {
		e.compileErr = errors.New("empty xpath expression")
		return e
	}
	expr, err := xpath.Compile(query)
	if err != nil {
		e.compileErr = fmt.Errorf("compile xpath %q: %w", query, err)
		return e
	}
	e.exprs.Put(expr)
	e.exprs.New = func() any {
		return xpath.MustCompile(query)
	}
	return e
}

// Err returns the compile error, if any.
func (e *Evaluator) Err() error {
	return e.compileErr
}

// Query returns the raw expression.
func (e *Evaluator) Query() string {
	return e.query
}

// Evaluate parses body as HTML and applies the expression. Parsing is
// tolerant of malformed markup. Panics raised by the query engine are turned
// into ResultFailed.
func (e *Evaluator) Evaluate(body []byte) (res Result) {
	if e.compileErr != nil {
		return Result{Kind: ResultFailed, Err: e.compileErr}
	}
	defer func() {
		if r := recover(); r != nil {
			res = Result{Kind: ResultFailed, Err: fmt.Errorf("evaluate xpath %q: %v", e.query, r)}
		}
	}()

	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return Result{Kind: ResultFailed, Err: fmt.Errorf("parse html: %w", err)}
	}
	expr, ok := e.exprs.Get().(*xpath.Expr)
	if !ok {
		return Result{Kind: ResultFailed, Err: fmt.Errorf("xpath %q is not compiled", e.query)}
	}
	defer e.exprs.Put(expr)
	return fromValue(expr.Evaluate(htmlquery.CreateXPathNavigator(doc)))
}

func fromValue(v any) Result {
	switch val := v.(type) {
	case *xpath.NodeIterator:
		var values []string
		for val.MoveNext() {
			values = append(values, val.Current().Value())
		}
		if len(values) == 0 {
			return Result{Kind: ResultEmpty}
		}
		return Result{Kind: ResultMulti, Values: values}
	case string:
		return Result{Kind: ResultScalar, Scalar: val}
	case float64:
		return Result{Kind: ResultScalar, Scalar: formatNumber(val)}
	case bool:
		return Result{Kind: ResultScalar, Scalar: formatBool(val)}
	default:
		return Result{Kind: ResultEmpty}
	}
}

// formatNumber keeps a fractional part on integral values so that counts
// read as "2.0", matching what earlier versions of this tool wrote.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
