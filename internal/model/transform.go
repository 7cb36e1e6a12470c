// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines transforms: named expressions mapping typed input ports to
// one typed output port, applied row by row.
//
//	transform "CelsiusToFahrenheit" {
//	  from "Celsius" { oftype = decimal }
//	  to "Fahrenheit" { oftype = decimal }
//
//	  Fahrenheit = (Celsius * 9 / 5) + 32
//	}
package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/valuetype"
)

// TransformPort is a typed input or output of a transform.
type TransformPort struct {
	Name      string
	Type      valuetype.ValueType
	DeclRange hcl.Range
}

// Transform is a named row-wise computation.
type Transform struct {
	Name      string
	Inputs    []*TransformPort
	Output    *TransformPort
	Body      Expression
	DeclRange hcl.Range
}

func (t *Transform) DefinitionName() string     { return t.Name }
func (t *Transform) DefinitionRange() hcl.Range { return t.DeclRange }
