package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// CLIPack is a pack with a default group, an optional dependency reachable
// through a named group, a hidden dependency and one template
const CLIPack = `[package]
name = "cli-battery-pack"
version = "0.3.0"
description = "Everything a command line tool needs"
repository = "https://github.com/example/cli-battery-pack"
keywords = ["battery-pack"]

[dependencies]
clap = { version = "4.5", features = ["derive"] }
dialoguer = "0.11"
indicatif = { version = "0.17", optional = true }
console = { version = "0.15", optional = true }
serde = "1"

[features]
default = ["clap", "dialoguer"]
indicators = ["indicatif", "console"]

[package.metadata.battery-pack]
hidden = ["serde*"]

[package.metadata.battery.templates]
simple = { path = "templates/simple", description = "A minimal CLI" }
`

// AppManifest is an empty binary crate
const AppManifest = `[package]
name = "my-app"
version = "0.1.0"
edition = "2021"
`

// WorkspaceRoot declares a virtual workspace with one member
const WorkspaceRoot = `[workspace]
members = ["app"]
resolver = "2"
`

// PackManifest builds a minimal pack manifest around a dependency table
func PackManifest(name, version, deps string) string {
	return fmt.Sprintf("[package]\nname = %q\nversion = %q\n\n[dependencies]\n%s", name, version, deps)
}

// TestPack is a pack crate written to disk
type TestPack struct {
	Name string
	Dir  string

	t *testing.T
}

// PackConfig declares a pack crate's files. Manifest becomes Cargo.toml.
type PackConfig struct {
	Manifest string
	Files    map[string]string
}

// SetupPack writes a pack crate into the local packs directory
func (env *TestEnvironment) SetupPack(name string, cfg PackConfig) *TestPack {
	env.t.Helper()
	return SetupPackAt(env.t, filepath.Join(env.PacksDir, name), name, cfg)
}

// SetupPackAt writes a pack crate into dir
func SetupPackAt(t *testing.T, dir, name string, cfg PackConfig) *TestPack {
	t.Helper()
	tp := &TestPack{Name: name, Dir: dir, t: t}
	tp.AddFile("Cargo.toml", cfg.Manifest)
	tp.AddFile("src/lib.rs", "")
	for path, content := range cfg.Files {
		tp.AddFile(path, content)
	}
	return tp
}

// AddFile writes a file relative to the pack directory
func (tp *TestPack) AddFile(rel, content string) string {
	tp.t.Helper()
	return WriteFile(tp.t, filepath.Join(tp.Dir, filepath.FromSlash(rel)), content)
}

// AddTemplate writes a template directory with a Cargo.toml using the usual
// placeholders
func (tp *TestPack) AddTemplate(path string) {
	tp.t.Helper()
	tp.AddFile(path+"/Cargo.toml", "[package]\nname = \"{{project-name}}\"\nversion = \"0.1.0\"\nauthors = [\"{{authors}}\"]\n")
	tp.AddFile(path+"/src/main.rs", "fn main() {\n    println!(\"{{crate_name}}\");\n}\n")
}
