package dispatch

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/scan/content"
)

// Filter decides which detections are dispatched automatically. It is a CEL
// expression over:
//
//	type   string               payload type name, e.g. "url"
//	text   string               raw payload
//	fields map(string, string)  parsed WiFi or contact fields
//
// Example: type == "url" && text.startsWith("https://")
type Filter struct {
	expr    string
	program cel.Program
}

// NewFilter compiles expr. It must evaluate to a bool.
func NewFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("text", cel.StringType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter %q: %w", expr, err)
	}

	return &Filter{expr: expr, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter against record.
func (f *Filter) Match(record scan.DecodedRecord) (bool, error) {
	fields := map[string]string(content.Details(record.Type, record.Text))
	if fields == nil {
		fields = map[string]string{}
	}

	out, _, err := f.program.Eval(map[string]any{
		"type":   record.Type.String(),
		"text":   record.Text,
		"fields": fields,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.expr, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.expr, out.Value())
	}
	return matched, nil
}
