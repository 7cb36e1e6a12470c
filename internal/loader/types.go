package loader

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/jayvee/internal/valuetype"
)

// collectionTypeName is the type constructor `Collection(elem)`.
const collectionTypeName = "Collection"

// valueType resolves a type expression: a primitive or value type name, or
// `Collection(T)`. It reports a diagnostic and returns nil when the
// expression does not name a type.
func (d *decoder) valueType(e hclsyntax.Expression) valuetype.ValueType {
	if call, ok := e.(*hclsyntax.FunctionCallExpr); ok {
		if call.Name != collectionTypeName {
			d.errorf(call.NameRange, "Unknown type constructor", "Only %s(T) can be used to build a type, found %s(...).", collectionTypeName, call.Name)
			return nil
		}
		if len(call.Args) != 1 {
			d.errorf(call.Range(), "Invalid type specification", "%s expects exactly one element type, got %d.", collectionTypeName, len(call.Args))
			return nil
		}
		elem := d.valueType(call.Args[0])
		if elem == nil {
			return nil
		}
		return valuetype.NewCollection(elem)
	}

	name, ok := d.identifier(e, "type")
	if !ok {
		return nil
	}
	if p, ok := valuetype.PrimitiveByName(name); ok {
		return p
	}
	if a, ok := d.ws.ValueTypes[name]; ok {
		return a
	}
	d.errorf(e.Range(), "Unknown value type", "%q is neither a built-in type nor a declared value type.", name)
	return nil
}
