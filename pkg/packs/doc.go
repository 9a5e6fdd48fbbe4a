// Package packs handles pack naming: the short names users type ("cli"),
// the crate names packs are published under ("cli-battery-pack"), and the
// selection of packs by name from a known set.
package packs
