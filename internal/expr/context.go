package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/valuetype"
)

// Strategy selects how operators with short-circuit potential are evaluated.
type Strategy uint8

const (
	// Lazy skips operands whose value cannot change the result. It is used
	// during execution.
	Lazy Strategy = iota
	// Exhaustive evaluates every operand so that all diagnostics surface in
	// one pass. It is used during validation.
	Exhaustive
)

func (s Strategy) String() string {
	if s == Exhaustive {
		return "exhaustive"
	}
	return "lazy"
}

// Context holds everything an evaluation may read: scoped variable bindings,
// runtime parameters, the value under test and the operator registry.
//
// A Context is not safe for concurrent use. Each pipeline run owns one.
type Context struct {
	ops    *Registry
	params *Parameters
	scopes []map[string]valuetype.Value

	valueUnderTest valuetype.Value
	hasValue       bool

	diags *hcl.Diagnostics
}

// NewContext creates a context. A nil params behaves like an empty parameter
// set.
func NewContext(ops *Registry, params *Parameters) *Context {
	if params == nil {
		params = NewParameters(nil)
	}
	return &Context{ops: ops, params: params}
}

// Operators returns the operator registry.
func (c *Context) Operators() *Registry { return c.ops }

// Parameters returns the runtime parameter provider.
func (c *Context) Parameters() *Parameters { return c.params }

// PushScope adds a new innermost scope with the given bindings.
func (c *Context) PushScope(bindings map[string]valuetype.Value) {
	scope := make(map[string]valuetype.Value, len(bindings))
	for k, v := range bindings {
		scope[k] = v
	}
	c.scopes = append(c.scopes, scope)
}

// PopScope removes the innermost scope.
func (c *Context) PopScope() {
	if len(c.scopes) == 0 {
		panic("expr: PopScope without matching PushScope")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// Depth returns the number of active scopes.
func (c *Context) Depth() int { return len(c.scopes) }

// Lookup resolves a variable, innermost scope first.
func (c *Context) Lookup(name string) (valuetype.Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// BindValueUnderTest makes v available through the `value` keyword until
// the returned function is called.
func (c *Context) BindValueUnderTest(v valuetype.Value) (restore func()) {
	prev, prevHas := c.valueUnderTest, c.hasValue
	c.valueUnderTest, c.hasValue = v, true
	return func() {
		c.valueUnderTest, c.hasValue = prev, prevHas
	}
}

// ValueUnderTest returns the bound value under test.
func (c *Context) ValueUnderTest() (valuetype.Value, bool) {
	return c.valueUnderTest, c.hasValue
}

// CollectDiagnostics routes evaluation diagnostics into diags until the
// returned function is called.
func (c *Context) CollectDiagnostics(diags *hcl.Diagnostics) (restore func()) {
	prev := c.diags
	c.diags = diags
	return func() { c.diags = prev }
}

func (c *Context) report(summary string, rng hcl.Range, format string, args ...any) {
	if c.diags == nil {
		return
	}
	*c.diags = append(*c.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  rng.Ptr(),
	})
}
