// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of a Jayvee workspace after it
// has been read from .jv files. It is the structure every later stage works
// on: validation walks it, the engine executes it.
//
// # Core Concepts
//
//   - Workspace: The root container aggregating every declaration found in one
//     or more files, including the built-in blocktype manifests.
//
//   - BlockType: The shape of a block. Built-in blocktypes are backed by a Go
//     executor; composite blocktypes contain their own blocks and pipes.
//
//   - Block and Pipe: The nodes and edges of a pipeline (or composite blocktype).
//
//   - Constraint, Transform and atomic value types: Reusable declarations that
//     blocks and value types refer to by name.
//
//   - Expression: A small typed expression tree. Every node keeps its hcl.Range,
//     which diagnostics use to point back at the offending source.
package model
