// Package types defines the results bpack commands produce. Every renderer
// in pkg/ui consumes these values, so they carry json and yaml tags and no
// behavior beyond small aggregations.
package types
