// Package session is the interactive pack manager as a state machine.
//
// A session is a Model holding the current Screen, the screens it can
// return to, and the project being edited. Update is a pure function of
// (Model, Event): it never performs I/O. Anything slow is returned as an
// Effect for the caller to run, and its result comes back as another
// Event. The bubbletea adapter in pkg/tui is one such caller; tests drive
// Update directly.
//
// The only transition that touches a manifest is confirm on the Expand or
// Review screens. It plans a change set with pkg/engine and stages it on
// private copies of the project's manifests. The staged result is carried
// by the Committed outcome; installing and saving it is the caller's job.
package session
