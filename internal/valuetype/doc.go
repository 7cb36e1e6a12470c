// Package valuetype defines the semantic type system of the pipeline language
// and the runtime value representation shared by evaluation, type checks and
// block executors.
//
// A ValueType is one of a closed set of variants: Primitive, *Atomic,
// *Collection and EmptyCollection. Code that must branch on the variant uses
// Visit with a Visitor so that adding a variant forces every call site to be
// updated.
//
// A Value is the runtime currency. A nil Value is the "undefined" sentinel
// produced by failed evaluations; it is never a valid member of any type.
package valuetype
