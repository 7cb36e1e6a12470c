// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines named constraints. A constraint is either an instance of
// a registered constraint kind configured by properties:
//
//	constraint "ZeroToHundred" {
//	  oftype     = RangeConstraint
//	  lowerBound = 0
//	  upperBound = 100
//	}
//
// or a boolean expression over the `value` keyword:
//
//	constraint "NonEmpty" {
//	  on         = text
//	  expression = lengthof(value) > 0
//	}
package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/valuetype"
)

// ExpressionConstraintKind is the kind name given to expression constraints.
const ExpressionConstraintKind = "ExpressionConstraint"

// Constraint is a named, reusable predicate over values.
type Constraint struct {
	Name string
	Kind string

	// On is the value type an expression constraint applies to. Kind-based
	// constraints take their type from the registered kind.
	On         valuetype.ValueType
	Expression Expression

	Properties map[string]*Property
	DeclRange  hcl.Range
}

func (c *Constraint) DefinitionName() string     { return c.Name }
func (c *Constraint) DefinitionRange() hcl.Range { return c.DeclRange }

// IsExpression reports whether c is an expression constraint.
func (c *Constraint) IsExpression() bool {
	return c.Kind == ExpressionConstraintKind
}

// Property is a `name = expression` assignment inside a block or constraint.
type Property struct {
	Name      string
	Expr      Expression
	DeclRange hcl.Range
}

// PropertySpec declares a property of a blocktype or constraint kind.
type PropertySpec struct {
	Name string
	Type valuetype.ValueType
	// Default is used when the property is not assigned. A spec without a
	// default is required unless Optional is set.
	Default   Expression
	Optional  bool
	DeclRange hcl.Range
}

// Required reports whether an assignment must be present.
func (p *PropertySpec) Required() bool {
	return p.Default == nil && !p.Optional
}
