package reports

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule is one threshold rule evaluated against every overview row. Expr is
// a CEL expression over the integer variables quantity, min_stock and
// max_stock, and must produce a boolean.
type Rule struct {
	Name  string
	Level AlertLevel
	Expr  string
}

// DefaultRules returns the built-in threshold rules. A zero threshold
// disables the corresponding rule for a product.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "low_stock", Level: LevelLowStock, Expr: "min_stock > 0 && quantity < min_stock"},
		{Name: "overstock", Level: LevelOverstock, Expr: "max_stock > 0 && quantity > max_stock"},
	}
}

type compiledRule struct {
	Rule
	prg cel.Program
}

// AlertEngine evaluates compiled threshold rules against overview rows.
// Rules are compiled once at startup; evaluation is allocation-light and
// safe for concurrent use.
type AlertEngine struct {
	rules []compiledRule
}

// NewAlertEngine compiles the rules. A rule that does not compile, or does
// not produce a boolean, fails construction.
func NewAlertEngine(rules []Rule) (*AlertEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("quantity", cel.IntType),
		cel.Variable("min_stock", cel.IntType),
		cel.Variable("max_stock", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.Name, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %s: expression must produce a boolean, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{Rule: r, prg: prg})
	}

	return &AlertEngine{rules: compiled}, nil
}

// Evaluate runs every rule against one overview row and returns the
// triggered alerts.
func (e *AlertEngine) Evaluate(item OverviewItem) ([]Alert, error) {
	vars := map[string]any{
		"quantity":  item.Quantity,
		"min_stock": item.MinStock,
		"max_stock": item.MaxStock,
	}

	var alerts []Alert
	for _, r := range e.rules {
		out, _, err := r.prg.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("evaluate rule %s: %w", r.Name, err)
		}
		matched, ok := out.Value().(bool)
		if !ok || !matched {
			continue
		}
		alerts = append(alerts, Alert{
			Rule:          r.Name,
			Level:         r.Level,
			WarehouseID:   item.WarehouseID,
			WarehouseCode: item.WarehouseCode,
			ProductID:     item.ProductID,
			ProductCode:   item.ProductCode,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			MinStock:      item.MinStock,
			MaxStock:      item.MaxStock,
			Message:       alertMessage(r.Rule, item),
		})
	}
	return alerts, nil
}

func alertMessage(r Rule, item OverviewItem) string {
	switch r.Level {
	case LevelLowStock:
		return fmt.Sprintf("%s (%s) at %s: quantity %d is below the minimum %d",
			item.ProductName, item.ProductCode, item.WarehouseCode, item.Quantity, item.MinStock)
	case LevelOverstock:
		return fmt.Sprintf("%s (%s) at %s: quantity %d exceeds the maximum %d",
			item.ProductName, item.ProductCode, item.WarehouseCode, item.Quantity, item.MaxStock)
	default:
		return fmt.Sprintf("%s (%s) at %s: rule %s matched at quantity %d",
			item.ProductName, item.ProductCode, item.WarehouseCode, r.Name, item.Quantity)
	}
}
