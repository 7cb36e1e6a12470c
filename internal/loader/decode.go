package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/jayvee/internal/expr"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/model"
	"github.com/vk/jayvee/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Top-level block types.
const (
	blockValueType   = "valuetype"
	blockConstraint  = "constraint"
	blockTransform   = "transform"
	blockBlockType   = "blocktype"
	blockBuiltinType = "builtin_blocktype"
	blockPipeline    = "pipeline"
)

// Nested block types.
const (
	nestedInput         = "input"
	nestedOutput        = "output"
	nestedProperty      = "property"
	nestedBlock         = "block"
	nestedPipe          = "pipe"
	nestedTransformFrom = "from"
	nestedTransformTo   = "to"
)

const (
	attrOfType      = "oftype"
	attrExpression  = "expression"
	attrOn          = "on"
	attrConstraints = "constraints"
	attrDefault     = "default"
	attrOptional    = "optional"
	attrFrom        = "from"
	attrTo          = "to"
	attrChain       = "chain"

	keywordValue    = "value"
	keywordRequires = "requires"
)

var topLevelBlocks = []string{blockValueType, blockConstraint, blockTransform, blockBlockType, blockPipeline}

type decl[T any] struct {
	block *hclsyntax.Block
	node  T
}

// decoder accumulates the workspace and the diagnostics of one load.
type decoder struct {
	ws    *model.Workspace
	ops   *expr.Registry
	diags hcl.Diagnostics

	// sources holds the text of every parsed file by name.
	sources map[string][]byte

	// names maps every top-level name to its declaration, across kinds.
	names map[string]hcl.Range

	valueTypes  []decl[*valuetype.Atomic]
	constraints []decl[*model.Constraint]
	transforms  []decl[*model.Transform]
	blockTypes  []decl[*model.BlockType]
	pipelines   []decl[*model.Pipeline]
}

func newDecoder(ops *expr.Registry) *decoder {
	return &decoder{
		ws:      model.NewWorkspace(),
		ops:     ops,
		names:   make(map[string]hcl.Range),
		sources: make(map[string][]byte),
	}
}

func (d *decoder) errorf(subject hcl.Range, summary, format string, args ...any) {
	d.diags = append(d.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  subject.Ptr(),
	})
}

// declare registers the top-level names of one file.
func (d *decoder) declare(body *hclsyntax.Body, manifest bool) {
	for _, attr := range sortedAttributes(body) {
		d.errorf(attr.NameRange, "Unexpected attribute", "Top-level attributes are not allowed, found %q.", attr.Name)
	}

	for _, b := range body.Blocks {
		switch b.Type {
		case blockValueType:
			name, ok := d.declareName(b)
			if !ok {
				continue
			}
			a := valuetype.DeclareAtomic(name, b.DefRange())
			d.ws.ValueTypes[name] = a
			d.ws.ValueTypeOrder = append(d.ws.ValueTypeOrder, name)
			d.valueTypes = append(d.valueTypes, decl[*valuetype.Atomic]{b, a})

		case blockConstraint:
			name, ok := d.declareName(b)
			if !ok {
				continue
			}
			c := &model.Constraint{Name: name, Properties: map[string]*model.Property{}, DeclRange: b.DefRange()}
			d.ws.Constraints[name] = c
			d.constraints = append(d.constraints, decl[*model.Constraint]{b, c})

		case blockTransform:
			name, ok := d.declareName(b)
			if !ok {
				continue
			}
			t := &model.Transform{Name: name, DeclRange: b.DefRange()}
			d.ws.Transforms[name] = t
			d.transforms = append(d.transforms, decl[*model.Transform]{b, t})

		case blockBlockType, blockBuiltinType:
			builtin := b.Type == blockBuiltinType
			if builtin && !manifest {
				d.errorf(b.TypeRange, "Built-in blocktype outside a module", "Built-in blocktypes can only be declared by module manifests; use %q instead.", blockBlockType)
				continue
			}
			name, ok := d.declareName(b)
			if !ok {
				continue
			}
			bt := &model.BlockType{Name: name, Builtin: builtin, DeclRange: b.DefRange()}
			d.ws.BlockTypes[name] = bt
			d.blockTypes = append(d.blockTypes, decl[*model.BlockType]{b, bt})

		case blockPipeline:
			name, ok := d.label(b)
			if !ok {
				continue
			}
			if prev, exists := d.ws.Pipeline(name); exists {
				d.errorf(b.DefRange(), "Duplicate pipeline", "A pipeline named %q was already declared at %s.", name, prev.DeclRange)
				continue
			}
			p := &model.Pipeline{Name: name, DeclRange: b.DefRange()}
			d.ws.Pipelines = append(d.ws.Pipelines, p)
			d.pipelines = append(d.pipelines, decl[*model.Pipeline]{b, p})

		default:
			d.errorf(b.TypeRange, "Unsupported block type", "Blocks of type %q are not expected here. Expected one of: %s.", b.Type, strings.Join(topLevelBlocks, ", "))
		}
	}
}

func (d *decoder) label(b *hclsyntax.Block) (string, bool) {
	if len(b.Labels) != 1 {
		d.errorf(b.DefRange(), "Invalid block header", "A %q block needs exactly one name label, found %d.", b.Type, len(b.Labels))
		return "", false
	}
	if !hclsyntax.ValidIdentifier(b.Labels[0]) {
		d.errorf(b.LabelRanges[0], "Invalid name", "%q is not a valid identifier.", b.Labels[0])
		return "", false
	}
	return b.Labels[0], true
}

// declareName reserves a name shared by value types, constraints, transforms
// and blocktypes.
func (d *decoder) declareName(b *hclsyntax.Block) (string, bool) {
	name, ok := d.label(b)
	if !ok {
		return "", false
	}
	if reserved(name) {
		d.errorf(b.LabelRanges[0], "Reserved name", "%q is a reserved name and cannot be declared.", name)
		return "", false
	}
	if prev, exists := d.names[name]; exists {
		d.errorf(b.DefRange(), "Duplicate declaration", "The name %q was already declared at %s.", name, prev)
		return "", false
	}
	d.names[name] = b.DefRange()
	return name, true
}

func reserved(name string) bool {
	if _, ok := valuetype.PrimitiveByName(name); ok {
		return true
	}
	if _, ok := iotype.ParseIOType(name); ok {
		return true
	}
	return name == keywordValue || name == keywordRequires || name == collectionTypeName
}

// define resolves every declaration collected by declare.
func (d *decoder) define() {
	for _, vt := range d.valueTypes {
		d.defineValueType(vt.block, vt.node)
	}
	for _, c := range d.constraints {
		d.defineConstraint(c.block, c.node)
	}
	for _, t := range d.transforms {
		d.defineTransform(t.block, t.node)
	}
	for _, bt := range d.blockTypes {
		d.defineBlockType(bt.block, bt.node)
	}
	for _, p := range d.pipelines {
		p.node.Blocks, p.node.Pipes = d.defineContainer(p.block.Body, p.node.Name, nil)
	}
}

func (d *decoder) defineValueType(b *hclsyntax.Block, a *valuetype.Atomic) {
	attrs := d.attributes(b.Body, attrOfType, attrConstraints)
	d.noBlocks(b.Body)

	of := d.required(b, attrs, attrOfType)
	if of == nil {
		return
	}
	super := d.valueType(of.Expr)

	var refs []valuetype.Reference
	if attr, ok := attrs[attrConstraints]; ok {
		for _, e := range d.nameList(attr.Expr, "constraint") {
			name := hcl.ExprAsKeyword(e)
			c, exists := d.ws.Constraints[name]
			if !exists {
				d.errorf(e.Range(), "Unknown constraint", "No constraint named %q is declared.", name)
				continue
			}
			refs = append(refs, c)
		}
	}

	if super == nil {
		return
	}
	if err := a.Define(super, refs...); err != nil {
		d.errorf(b.DefRange(), "Invalid value type", "%s.", err)
	}
}

func (d *decoder) defineConstraint(b *hclsyntax.Block, c *model.Constraint) {
	d.noBlocks(b.Body)

	if _, isExpr := b.Body.Attributes[attrExpression]; isExpr {
		attrs := d.attributes(b.Body, attrOn, attrExpression)
		c.Kind = model.ExpressionConstraintKind
		if on := d.required(b, attrs, attrOn); on != nil {
			c.On = d.valueType(on.Expr)
		}
		c.Expression = d.expression(attrs[attrExpression].Expr, true)
		return
	}

	attrs, rest := d.splitAttributes(b.Body, attrOfType)
	if of := d.required(b, attrs, attrOfType); of != nil {
		c.Kind, _ = d.identifier(of.Expr, "constraint type")
	}
	for _, attr := range rest {
		c.Properties[attr.Name] = d.property(attr, false)
	}
}

func (d *decoder) defineTransform(b *hclsyntax.Block, t *model.Transform) {
	for _, nested := range d.blocks(b.Body, nestedTransformFrom, nestedTransformTo) {
		port := d.transformPort(nested)
		if port == nil {
			continue
		}
		if nested.Type == nestedTransformFrom {
			t.Inputs = append(t.Inputs, port)
			continue
		}
		if t.Output != nil {
			d.errorf(nested.DefRange(), "Duplicate output port", "Transform %q already declares output %q.", t.Name, t.Output.Name)
			continue
		}
		t.Output = port
	}

	if t.Output == nil {
		d.errorf(b.DefRange(), "Missing output port", "Transform %q must declare exactly one %q port.", t.Name, nestedTransformTo)
	}

	for _, attr := range sortedAttributes(b.Body) {
		if t.Output == nil || attr.Name != t.Output.Name {
			d.errorf(attr.NameRange, "Unexpected attribute", "A transform body may only assign its output port, found %q.", attr.Name)
			continue
		}
		t.Body = d.expression(attr.Expr, false)
	}
	if t.Output != nil && t.Body == nil && b.Body.Attributes[t.Output.Name] == nil {
		d.errorf(b.DefRange(), "Missing transform body", "Transform %q does not assign its output port %q.", t.Name, t.Output.Name)
	}
}

func (d *decoder) transformPort(b *hclsyntax.Block) *model.TransformPort {
	name, ok := d.label(b)
	if !ok {
		return nil
	}
	attrs := d.attributes(b.Body, attrOfType)
	d.noBlocks(b.Body)
	of := d.required(b, attrs, attrOfType)
	if of == nil {
		return nil
	}
	return &model.TransformPort{Name: name, Type: d.valueType(of.Expr), DeclRange: b.DefRange()}
}

func (d *decoder) defineBlockType(b *hclsyntax.Block, bt *model.BlockType) {
	for _, attr := range sortedAttributes(b.Body) {
		d.errorf(attr.NameRange, "Unexpected attribute", "Blocktypes declare inputs, outputs and properties as nested blocks, found %q.", attr.Name)
	}

	allowed := []string{nestedInput, nestedOutput, nestedProperty}
	if !bt.Builtin {
		allowed = append(allowed, nestedBlock, nestedPipe)
	}

	for _, nested := range d.blocks(b.Body, allowed...) {
		switch nested.Type {
		case nestedInput, nestedOutput:
			port := d.ioPort(nested)
			if port == nil {
				continue
			}
			target := &bt.Input
			if nested.Type == nestedOutput {
				target = &bt.Output
			}
			if *target != nil {
				d.errorf(nested.DefRange(), "Duplicate port", "Blocktype %q declares more than one %s port.", bt.Name, nested.Type)
				continue
			}
			*target = port
		case nestedProperty:
			spec := d.propertySpec(nested)
			if spec == nil {
				continue
			}
			if _, exists := bt.Property(spec.Name); exists {
				d.errorf(nested.DefRange(), "Duplicate property", "Blocktype %q declares property %q more than once.", bt.Name, spec.Name)
				continue
			}
			bt.Properties = append(bt.Properties, spec)
		}
	}

	if !bt.Builtin {
		bt.Blocks, bt.Pipes = d.defineContainer(b.Body, bt.Name, bt)
	}
}

func (d *decoder) ioPort(b *hclsyntax.Block) *model.IOPort {
	name, ok := d.label(b)
	if !ok {
		return nil
	}
	attrs := d.attributes(b.Body, attrOfType)
	d.noBlocks(b.Body)
	of := d.required(b, attrs, attrOfType)
	if of == nil {
		return nil
	}
	typeName, ok := d.identifier(of.Expr, "IO type")
	if !ok {
		return nil
	}
	t, ok := iotype.ParseIOType(typeName)
	if !ok {
		d.errorf(of.Expr.Range(), "Unknown IO type", "%q is not an IO type. Expected one of: None, File, TextFile, Sheet, Table.", typeName)
		return nil
	}
	return &model.IOPort{Name: name, Type: t, DeclRange: b.DefRange()}
}

func (d *decoder) propertySpec(b *hclsyntax.Block) *model.PropertySpec {
	name, ok := d.label(b)
	if !ok {
		return nil
	}
	attrs := d.attributes(b.Body, attrOfType, attrDefault, attrOptional)
	d.noBlocks(b.Body)
	of := d.required(b, attrs, attrOfType)
	if of == nil {
		return nil
	}

	spec := &model.PropertySpec{Name: name, Type: d.valueType(of.Expr), DeclRange: b.DefRange()}
	if def, ok := attrs[attrDefault]; ok {
		spec.Default = d.expression(def.Expr, false)
	}
	if opt, ok := attrs[attrOptional]; ok {
		v, diags := opt.Expr.Value(nil)
		d.diags = append(d.diags, diags...)
		if !diags.HasErrors() {
			if err := gocty.FromCtyValue(v, &spec.Optional); err != nil {
				d.errorf(opt.Expr.Range(), "Invalid optional flag", "The %q attribute must be true or false: %s.", attrOptional, err)
			}
		}
	}
	return spec
}

// defineContainer decodes the block and pipe declarations of a pipeline or
// composite blocktype. Inside a composite, the names of its ports are valid
// pipe endpoints.
func (d *decoder) defineContainer(body *hclsyntax.Body, container string, composite *model.BlockType) ([]*model.Block, []*model.Pipe) {
	if composite == nil {
		for _, attr := range sortedAttributes(body) {
			d.errorf(attr.NameRange, "Unexpected attribute", "Pipelines contain only block and pipe declarations, found %q.", attr.Name)
		}
	}

	var nested []*hclsyntax.Block
	if composite == nil {
		nested = d.blocks(body, nestedBlock, nestedPipe)
	} else {
		for _, b := range body.Blocks {
			if b.Type == nestedBlock || b.Type == nestedPipe {
				nested = append(nested, b)
			}
		}
	}

	var blocks []*model.Block
	var pipes []*model.Pipe
	seen := make(map[string]hcl.Range)
	if composite != nil {
		for _, port := range []*model.IOPort{composite.Input, composite.Output} {
			if port != nil {
				seen[port.Name] = port.DeclRange
			}
		}
	}

	for _, b := range nested {
		switch b.Type {
		case nestedBlock:
			blk := d.block(b)
			if blk == nil {
				continue
			}
			if prev, exists := seen[blk.Name]; exists {
				d.errorf(b.DefRange(), "Duplicate block", "The name %q is already used in %q at %s.", blk.Name, container, prev)
				continue
			}
			seen[blk.Name] = blk.DeclRange
			blocks = append(blocks, blk)
		case nestedPipe:
			pipes = append(pipes, d.pipes(b)...)
		}
	}
	return blocks, pipes
}

func (d *decoder) block(b *hclsyntax.Block) *model.Block {
	name, ok := d.label(b)
	if !ok {
		return nil
	}
	d.noBlocks(b.Body)
	attrs, rest := d.splitAttributes(b.Body, attrOfType)
	blk := &model.Block{Name: name, Properties: map[string]*model.Property{}, DeclRange: b.DefRange()}
	if of := d.required(b, attrs, attrOfType); of != nil {
		blk.TypeName, _ = d.identifier(of.Expr, "blocktype")
		blk.Type = d.ws.BlockTypes[blk.TypeName]
	}
	for _, attr := range rest {
		blk.Properties[attr.Name] = d.property(attr, false)
	}
	return blk
}

// pipes decodes either `from = A  to = B` or `chain = [A, B, C]`.
func (d *decoder) pipes(b *hclsyntax.Block) []*model.Pipe {
	if len(b.Labels) > 0 {
		d.errorf(b.LabelRanges[0], "Unexpected label", "Pipes are anonymous.")
	}
	d.noBlocks(b.Body)
	attrs := d.attributes(b.Body, attrFrom, attrTo, attrChain)

	if chain, ok := attrs[attrChain]; ok {
		if len(attrs) > 1 {
			d.errorf(b.DefRange(), "Conflicting pipe attributes", "A pipe uses either %q or %q and %q.", attrChain, attrFrom, attrTo)
		}
		elems := d.nameList(chain.Expr, "block")
		if len(elems) < 2 {
			d.errorf(chain.Expr.Range(), "Invalid pipe chain", "A chain connects at least two blocks.")
			return nil
		}
		var out []*model.Pipe
		for i := 1; i < len(elems); i++ {
			out = append(out, &model.Pipe{
				From:      hcl.ExprAsKeyword(elems[i-1]),
				To:        hcl.ExprAsKeyword(elems[i]),
				DeclRange: hcl.RangeBetween(elems[i-1].Range(), elems[i].Range()),
			})
		}
		return out
	}

	from, to := d.required(b, attrs, attrFrom), d.required(b, attrs, attrTo)
	if from == nil || to == nil {
		return nil
	}
	fromName, okFrom := d.identifier(from.Expr, "block")
	toName, okTo := d.identifier(to.Expr, "block")
	if !okFrom || !okTo {
		return nil
	}
	return []*model.Pipe{{From: fromName, To: toName, DeclRange: b.DefRange()}}
}

func (d *decoder) property(attr *hclsyntax.Attribute, allowValue bool) *model.Property {
	return &model.Property{
		Name:      attr.Name,
		Expr:      d.expression(attr.Expr, allowValue),
		DeclRange: attr.SrcRange,
	}
}

// attributes returns the attributes named in known and reports all others.
func (d *decoder) attributes(body *hclsyntax.Body, known ...string) map[string]*hclsyntax.Attribute {
	found, rest := d.splitAttributes(body, known...)
	for _, attr := range rest {
		d.errorf(attr.NameRange, "Unsupported argument", "An argument named %q is not expected here. Expected one of: %s.", attr.Name, strings.Join(known, ", "))
	}
	return found
}

// splitAttributes returns the attributes named in known, and the remaining
// attributes in source order.
func (d *decoder) splitAttributes(body *hclsyntax.Body, known ...string) (map[string]*hclsyntax.Attribute, []*hclsyntax.Attribute) {
	found := make(map[string]*hclsyntax.Attribute)
	var rest []*hclsyntax.Attribute
	for _, attr := range sortedAttributes(body) {
		if contains(known, attr.Name) {
			found[attr.Name] = attr
			continue
		}
		rest = append(rest, attr)
	}
	return found, rest
}

func (d *decoder) required(b *hclsyntax.Block, attrs map[string]*hclsyntax.Attribute, name string) *hclsyntax.Attribute {
	attr, ok := attrs[name]
	if !ok {
		d.errorf(b.DefRange(), "Missing required argument", "The argument %q is required in a %q block.", name, b.Type)
		return nil
	}
	return attr
}

// blocks returns the nested blocks of the allowed types and reports the rest.
func (d *decoder) blocks(body *hclsyntax.Body, allowed ...string) []*hclsyntax.Block {
	var out []*hclsyntax.Block
	for _, b := range body.Blocks {
		if !contains(allowed, b.Type) {
			d.errorf(b.TypeRange, "Unsupported block type", "Blocks of type %q are not expected here. Expected one of: %s.", b.Type, strings.Join(allowed, ", "))
			continue
		}
		out = append(out, b)
	}
	return out
}

func (d *decoder) noBlocks(body *hclsyntax.Body) {
	d.blocks(body)
}

// identifier reads a bare name such as `text` or `HttpExtractor`.
func (d *decoder) identifier(e hclsyntax.Expression, what string) (string, bool) {
	traversal, diags := hcl.AbsTraversalForExpr(e)
	if diags.HasErrors() || len(traversal) != 1 {
		d.errorf(e.Range(), "Invalid "+what+" reference", "Expected the name of a %s, not a complex expression.", what)
		return "", false
	}
	return traversal.RootName(), true
}

// nameList reads a list of bare names, such as a constraint list or a pipe
// chain.
func (d *decoder) nameList(e hclsyntax.Expression, what string) []hcl.Expression {
	list, diags := hcl.ExprList(e)
	if diags.HasErrors() {
		d.errorf(e.Range(), "Invalid "+what+" list", "Expected a list of %s names.", what)
		return nil
	}
	out := make([]hcl.Expression, 0, len(list))
	for _, elem := range list {
		if hcl.ExprAsKeyword(elem) == "" {
			d.errorf(elem.Range(), "Invalid "+what+" reference", "Expected the name of a %s.", what)
			continue
		}
		out = append(out, elem)
	}
	return out
}

func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	out := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		out = append(out, attr)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SrcRange.Start.Byte < out[j].SrcRange.Start.Byte
	})
	return out
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// literalValue converts a constant HCL value.
func literalValue(v cty.Value) (valuetype.Value, error) {
	switch {
	case v.IsNull():
		return nil, fmt.Errorf("null is not a value")
	case !v.IsWhollyKnown():
		return nil, fmt.Errorf("value is not known")
	case v.Type() == cty.Bool:
		return valuetype.Bool(v.True()), nil
	case v.Type() == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return valuetype.Number(f), nil
	case v.Type() == cty.String:
		return valuetype.Text(v.AsString()), nil
	}
	return nil, fmt.Errorf("values of type %s are not supported", v.Type().FriendlyName())
}
