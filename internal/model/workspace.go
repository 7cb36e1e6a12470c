// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Workspace, the root container for everything loaded
// from a set of .jv files and the built-in manifests.
package model

import (
	"sort"

	"github.com/vk/jayvee/internal/valuetype"
)

// Workspace aggregates all declarations.
type Workspace struct {
	ValueTypes  map[string]*valuetype.Atomic
	Constraints map[string]*Constraint
	Transforms  map[string]*Transform
	BlockTypes  map[string]*BlockType
	Pipelines   []*Pipeline

	// ValueTypeOrder lists atomic value type names in declaration order.
	ValueTypeOrder []string
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		ValueTypes:  make(map[string]*valuetype.Atomic),
		Constraints: make(map[string]*Constraint),
		Transforms:  make(map[string]*Transform),
		BlockTypes:  make(map[string]*BlockType),
	}
}

// Pipeline returns the pipeline with the given name.
func (w *Workspace) Pipeline(name string) (*Pipeline, bool) {
	for _, p := range w.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// CompositeBlockTypes returns the user-declared composite blocktypes sorted
// by name.
func (w *Workspace) CompositeBlockTypes() []*BlockType {
	var out []*BlockType
	for _, bt := range w.BlockTypes {
		if !bt.Builtin {
			out = append(out, bt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
