// Package loader turns .jv files into a model.Workspace.
//
// Files are written in the HCL native syntax. Loading happens in two phases:
// the first declares every top-level name (value types, constraints,
// transforms, blocktypes, pipelines) so that the second phase can resolve
// references regardless of declaration order. Module manifests are loaded
// before user files and are the only sources allowed to declare
// `builtin_blocktype` blocks.
//
// The loader reports structural problems as hcl.Diagnostics tied to source
// ranges. Semantic checks such as type compatibility live in the validation
// package.
package loader
