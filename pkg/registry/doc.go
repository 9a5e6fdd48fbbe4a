// Package registry finds packs and their specs.
//
// Two sources feed it: the crates.io API (Client), which searches by the
// battery-pack keyword and downloads crate archives into the XDG cache, and
// local directories (LocalSource), which are read directly. Catalog merges
// them, local entries winning over remote ones with the same name, and
// assembles the PackDetail shown by `bpack show` and the session's detail
// screen.
package registry
