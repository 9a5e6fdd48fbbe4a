// Package paths locates bpack's own directories (XDG cache, config and state)
// and discovers the Cargo project a command operates on.
//
// Discovery runs once per invocation. The resulting ProjectContext is passed
// explicitly to every component that needs to know where manifests live.
package paths
