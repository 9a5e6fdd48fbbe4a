// Package filesystem is the file access layer shared by the project loader,
// the crate cache and the scaffolder.
//
// Everything goes through the FS interface so tests can point a component
// at a temporary directory, and so manifest writes can be made atomic in one
// place (WriteFileAtomic).
package filesystem
