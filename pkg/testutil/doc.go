// Package testutil provides utilities for testing bpack commands.
//
// Key components:
//   - TestEnvironment: a temp directory holding a Cargo project, a directory
//     of local packs and isolated XDG directories
//   - TestPack: declarative pack crate setup, templates and examples included
//   - Manifest assertions that read dependency tables the way bpack does
//
// All test data is defined inline. Each environment is isolated with no
// shared state.
package testutil
