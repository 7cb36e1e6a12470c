// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/valuetype"
)

func TestContainerHelpers(t *testing.T) {
	// --- Arrange ---
	p := &Pipeline{
		Name:   "P",
		Blocks: []*Block{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		Pipes: []*Pipe{
			{From: "A", To: "B"},
			{From: "B", To: "C"},
			{From: "A", To: "C"},
			{From: "in", To: "A"},
		},
	}

	// --- Act & Assert ---
	assert.Len(t, IngoingPipes(p, "C"), 2)
	assert.Len(t, OutgoingPipes(p, "A"), 2)

	parents := Parents(p, "C")
	assert.Equal(t, []string{"B", "A"}, []string{parents[0].Name, parents[1].Name})
	assert.Empty(t, Parents(p, "A"), "pipes from ports are not parents")

	_, ok := FindBlock(p, "Z")
	assert.False(t, ok)
}

func TestIsConstant(t *testing.T) {
	one := &Literal{Value: valuetype.Number(1)}
	assert.True(t, IsConstant(&BinaryExpression{Operator: "+", Left: one, Right: one}))
	assert.True(t, IsConstant(&CollectionLiteral{Elements: []Expression{one}}))
	assert.False(t, IsConstant(&BinaryExpression{Operator: "+", Left: one, Right: &Variable{Name: "x"}}))
	assert.False(t, IsConstant(&RuntimeParameter{Name: "X"}))
	assert.False(t, IsConstant(&UnaryExpression{Operator: "-", Operand: &ValueKeyword{}}))
}

func TestBlockTypePorts(t *testing.T) {
	bt := &BlockType{
		Name:       "Loader",
		Input:      &IOPort{Name: "default", Type: iotype.TypeTable},
		Properties: []*PropertySpec{{Name: "table", Type: valuetype.TextType}},
	}

	assert.Equal(t, iotype.TypeTable, bt.InputType())
	assert.Equal(t, iotype.TypeNone, bt.OutputType())

	spec, ok := bt.Property("table")
	assert.True(t, ok)
	assert.True(t, spec.Required())
}
