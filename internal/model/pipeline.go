// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines pipelines and the Container abstraction shared by
// pipelines and composite blocktypes.
package model

import (
	"github.com/hashicorp/hcl/v2"
)

// Container is anything holding blocks connected by pipes.
type Container interface {
	ContainerName() string
	ContainedBlocks() []*Block
	ContainedPipes() []*Pipe
	ContainerRange() hcl.Range
}

// Pipeline is a named DAG of blocks.
type Pipeline struct {
	Name      string
	Blocks    []*Block
	Pipes     []*Pipe
	DeclRange hcl.Range
}

func (p *Pipeline) ContainerName() string     { return p.Name }
func (p *Pipeline) ContainedBlocks() []*Block { return p.Blocks }
func (p *Pipeline) ContainedPipes() []*Pipe   { return p.Pipes }
func (p *Pipeline) ContainerRange() hcl.Range { return p.DeclRange }

// FindBlock returns the block with the given name.
func FindBlock(c Container, name string) (*Block, bool) {
	for _, b := range c.ContainedBlocks() {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// IngoingPipes returns the pipes ending at the named block, in declaration
// order.
func IngoingPipes(c Container, name string) []*Pipe {
	var out []*Pipe
	for _, p := range c.ContainedPipes() {
		if p.To == name {
			out = append(out, p)
		}
	}
	return out
}

// OutgoingPipes returns the pipes starting at the named block, in declaration
// order.
func OutgoingPipes(c Container, name string) []*Pipe {
	var out []*Pipe
	for _, p := range c.ContainedPipes() {
		if p.From == name {
			out = append(out, p)
		}
	}
	return out
}

// Parents returns the blocks piped into the named block, skipping pipes that
// start at a port of the enclosing blocktype.
func Parents(c Container, name string) []*Block {
	var out []*Block
	for _, p := range IngoingPipes(c, name) {
		if b, ok := FindBlock(c, p.From); ok {
			out = append(out, b)
		}
	}
	return out
}
