// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines blocktypes, blocks and pipes.
//
// A built-in blocktype is declared in a module manifest and executed by Go
// code registered under the same name:
//
//	builtin_blocktype "HttpExtractor" {
//	  input "default" { oftype = None }
//	  output "default" { oftype = File }
//	  property "url" { oftype = text }
//	}
//
// A composite blocktype wires other blocks together and is executed by the
// engine itself. Its input and output port names may be used as pipe
// endpoints inside its body.
package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jayvee/internal/iotype"
)

// IOPort is the input or output port of a blocktype.
type IOPort struct {
	Name      string
	Type      iotype.IOType
	DeclRange hcl.Range
}

// BlockType declares the shape of a block.
type BlockType struct {
	Name       string
	Builtin    bool
	Input      *IOPort
	Output     *IOPort
	Properties []*PropertySpec

	// Blocks and Pipes are only set on composite blocktypes.
	Blocks []*Block
	Pipes  []*Pipe

	DeclRange hcl.Range
}

// Property returns the property spec with the given name.
func (bt *BlockType) Property(name string) (*PropertySpec, bool) {
	for _, p := range bt.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// InputType returns the input IO type, None when no input port is declared.
func (bt *BlockType) InputType() iotype.IOType {
	if bt.Input == nil {
		return iotype.TypeNone
	}
	return bt.Input.Type
}

// OutputType returns the output IO type, None when no output port is declared.
func (bt *BlockType) OutputType() iotype.IOType {
	if bt.Output == nil {
		return iotype.TypeNone
	}
	return bt.Output.Type
}

func (bt *BlockType) ContainerName() string     { return bt.Name }
func (bt *BlockType) ContainedBlocks() []*Block { return bt.Blocks }
func (bt *BlockType) ContainedPipes() []*Pipe   { return bt.Pipes }
func (bt *BlockType) ContainerRange() hcl.Range { return bt.DeclRange }

// Block is a configured instance of a blocktype.
type Block struct {
	Name       string
	TypeName   string
	Type       *BlockType
	Properties map[string]*Property
	DeclRange  hcl.Range
}

// Pipe is a data-flow edge between two blocks, or between a block and a port
// of the enclosing composite blocktype.
type Pipe struct {
	From      string
	To        string
	DeclRange hcl.Range
}
