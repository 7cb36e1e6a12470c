// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the expression tree shared by property values, constraint
// expressions and transform bodies.
package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/valuetype"
)

// Expression is a node of the expression tree.
type Expression interface {
	Range() hcl.Range
	expressionNode()
}

// Literal is a constant value: a scalar, a regex, a cell range or a reference
// to a constraint or transform declaration. Type is set when the literal is
// written with a wider type than its value implies, e.g. `1.0` is decimal.
type Literal struct {
	Value    valuetype.Value
	Type     valuetype.ValueType
	SrcRange hcl.Range
}

// CollectionLiteral is a `[a, b, ...]` expression.
type CollectionLiteral struct {
	Elements []Expression
	SrcRange hcl.Range
}

// Variable is a free variable bound by the enclosing scope: a composite
// blocktype property or a transform input port.
type Variable struct {
	Name     string
	SrcRange hcl.Range
}

// RuntimeParameter is a `requires.NAME` expression resolved from externally
// supplied parameters.
type RuntimeParameter struct {
	Name     string
	SrcRange hcl.Range
}

// ValueKeyword is the `value` keyword denoting the value under test inside a
// constraint expression.
type ValueKeyword struct {
	SrcRange hcl.Range
}

// UnaryExpression applies a unary operator.
type UnaryExpression struct {
	Operator string
	Operand  Expression
	SrcRange hcl.Range
}

// BinaryExpression applies a binary operator.
type BinaryExpression struct {
	Operator string
	Left     Expression
	Right    Expression
	SrcRange hcl.Range
}

// TernaryExpression applies a ternary operator.
type TernaryExpression struct {
	Operator string
	First    Expression
	Second   Expression
	Third    Expression
	SrcRange hcl.Range
}

func (e *Literal) Range() hcl.Range           { return e.SrcRange }
func (e *CollectionLiteral) Range() hcl.Range { return e.SrcRange }
func (e *Variable) Range() hcl.Range          { return e.SrcRange }
func (e *RuntimeParameter) Range() hcl.Range  { return e.SrcRange }
func (e *ValueKeyword) Range() hcl.Range      { return e.SrcRange }
func (e *UnaryExpression) Range() hcl.Range   { return e.SrcRange }
func (e *BinaryExpression) Range() hcl.Range  { return e.SrcRange }
func (e *TernaryExpression) Range() hcl.Range { return e.SrcRange }

func (*Literal) expressionNode()           {}
func (*CollectionLiteral) expressionNode() {}
func (*Variable) expressionNode()          {}
func (*RuntimeParameter) expressionNode()  {}
func (*ValueKeyword) expressionNode()      {}
func (*UnaryExpression) expressionNode()   {}
func (*BinaryExpression) expressionNode()  {}
func (*TernaryExpression) expressionNode() {}

// IsConstant reports whether e can be evaluated without any bindings,
// runtime parameters or value under test.
func IsConstant(e Expression) bool {
	switch e := e.(type) {
	case *Literal:
		return true
	case *CollectionLiteral:
		for _, el := range e.Elements {
			if !IsConstant(el) {
				return false
			}
		}
		return true
	case *UnaryExpression:
		return IsConstant(e.Operand)
	case *BinaryExpression:
		return IsConstant(e.Left) && IsConstant(e.Right)
	case *TernaryExpression:
		return IsConstant(e.First) && IsConstant(e.Second) && IsConstant(e.Third)
	}
	return false
}
