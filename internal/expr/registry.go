package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
)

// UnaryEvaluator computes the value of a unary expression. Implementations
// evaluate their operand through Evaluate so that they control laziness.
type UnaryEvaluator interface {
	Evaluate(e *model.UnaryExpression, ctx *Context, s Strategy) valuetype.Value
}

// BinaryEvaluator computes the value of a binary expression.
type BinaryEvaluator interface {
	Evaluate(e *model.BinaryExpression, ctx *Context, s Strategy) valuetype.Value
}

// TernaryEvaluator computes the value of a ternary expression.
type TernaryEvaluator interface {
	Evaluate(e *model.TernaryExpression, ctx *Context, s Strategy) valuetype.Value
}

// UnaryTypeComputer infers the result type of a unary expression from its
// operand type, appending diagnostics for unsupported operands.
type UnaryTypeComputer func(operand valuetype.ValueType, e *model.UnaryExpression, diags *hcl.Diagnostics) valuetype.ValueType

// BinaryTypeComputer infers the result type of a binary expression.
type BinaryTypeComputer func(left, right valuetype.ValueType, e *model.BinaryExpression, diags *hcl.Diagnostics) valuetype.ValueType

// TernaryTypeComputer infers the result type of a ternary expression.
type TernaryTypeComputer func(first, second, third valuetype.ValueType, e *model.TernaryExpression, diags *hcl.Diagnostics) valuetype.ValueType

// Registry holds the evaluators and type computers for every operator. The
// two kinds of tables are independent; Validate checks that they cover the
// same operators.
type Registry struct {
	unary   map[string]UnaryEvaluator
	binary  map[string]BinaryEvaluator
	ternary map[string]TernaryEvaluator

	unaryTypes   map[string]UnaryTypeComputer
	binaryTypes  map[string]BinaryTypeComputer
	ternaryTypes map[string]TernaryTypeComputer
}

// NewEmptyRegistry creates a registry without operators.
func NewEmptyRegistry() *Registry {
	return &Registry{
		unary:        make(map[string]UnaryEvaluator),
		binary:       make(map[string]BinaryEvaluator),
		ternary:      make(map[string]TernaryEvaluator),
		unaryTypes:   make(map[string]UnaryTypeComputer),
		binaryTypes:  make(map[string]BinaryTypeComputer),
		ternaryTypes: make(map[string]TernaryTypeComputer),
	}
}

// NewRegistry creates a registry with the built-in operators.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	registerUnaryOperators(r)
	registerBinaryOperators(r)
	registerTernaryOperators(r)
	return r
}

// RegisterUnaryEvaluator adds a unary evaluator. It panics on duplicates.
func (r *Registry) RegisterUnaryEvaluator(op string, ev UnaryEvaluator) {
	if _, exists := r.unary[op]; exists {
		panic(fmt.Sprintf("unary evaluator for operator '%s' already registered", op))
	}
	r.unary[op] = ev
}

// RegisterBinaryEvaluator adds a binary evaluator. It panics on duplicates.
func (r *Registry) RegisterBinaryEvaluator(op string, ev BinaryEvaluator) {
	if _, exists := r.binary[op]; exists {
		panic(fmt.Sprintf("binary evaluator for operator '%s' already registered", op))
	}
	r.binary[op] = ev
}

// RegisterTernaryEvaluator adds a ternary evaluator. It panics on duplicates.
func (r *Registry) RegisterTernaryEvaluator(op string, ev TernaryEvaluator) {
	if _, exists := r.ternary[op]; exists {
		panic(fmt.Sprintf("ternary evaluator for operator '%s' already registered", op))
	}
	r.ternary[op] = ev
}

// RegisterUnaryTypeComputer adds a unary type computer. It panics on duplicates.
func (r *Registry) RegisterUnaryTypeComputer(op string, tc UnaryTypeComputer) {
	if _, exists := r.unaryTypes[op]; exists {
		panic(fmt.Sprintf("unary type computer for operator '%s' already registered", op))
	}
	r.unaryTypes[op] = tc
}

// RegisterBinaryTypeComputer adds a binary type computer. It panics on duplicates.
func (r *Registry) RegisterBinaryTypeComputer(op string, tc BinaryTypeComputer) {
	if _, exists := r.binaryTypes[op]; exists {
		panic(fmt.Sprintf("binary type computer for operator '%s' already registered", op))
	}
	r.binaryTypes[op] = tc
}

// RegisterTernaryTypeComputer adds a ternary type computer. It panics on duplicates.
func (r *Registry) RegisterTernaryTypeComputer(op string, tc TernaryTypeComputer) {
	if _, exists := r.ternaryTypes[op]; exists {
		panic(fmt.Sprintf("ternary type computer for operator '%s' already registered", op))
	}
	r.ternaryTypes[op] = tc
}

// UnaryOperators returns the operators with a unary evaluator, sorted.
func (r *Registry) UnaryOperators() []string { return sortedKeys(r.unary) }

// BinaryOperators returns the operators with a binary evaluator, sorted.
func (r *Registry) BinaryOperators() []string { return sortedKeys(r.binary) }

// TernaryOperators returns the operators with a ternary evaluator, sorted.
func (r *Registry) TernaryOperators() []string { return sortedKeys(r.ternary) }

// IsUnary reports whether op is a registered unary operator.
func (r *Registry) IsUnary(op string) bool {
	_, ok := r.unaryTypes[op]
	return ok
}

// IsBinary reports whether op is a registered binary operator.
func (r *Registry) IsBinary(op string) bool {
	_, ok := r.binaryTypes[op]
	return ok
}

// IsTernary reports whether op is a registered ternary operator.
func (r *Registry) IsTernary(op string) bool {
	_, ok := r.ternaryTypes[op]
	return ok
}

// Validate checks that evaluators and type computers cover exactly the same
// operators.
func (r *Registry) Validate() error {
	var errs []string
	errs = append(errs, parity("unary", r.unary, r.unaryTypes)...)
	errs = append(errs, parity("binary", r.binary, r.binaryTypes)...)
	errs = append(errs, parity("ternary", r.ternary, r.ternaryTypes)...)
	if len(errs) > 0 {
		return fmt.Errorf("operator registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func parity[E, T any](arity string, evaluators map[string]E, computers map[string]T) []string {
	var errs []string
	for _, op := range sortedKeys(evaluators) {
		if _, ok := computers[op]; !ok {
			errs = append(errs, fmt.Sprintf("%s operator '%s' has an evaluator but no type computer", arity, op))
		}
	}
	for _, op := range sortedKeys(computers) {
		if _, ok := evaluators[op]; !ok {
			errs = append(errs, fmt.Sprintf("%s operator '%s' has a type computer but no evaluator", arity, op))
		}
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
