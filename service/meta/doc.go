// Package meta loads configuration documents from any afs location. Values
// may reference the environment as ${env.KEY} or ${env.KEY:-default}; the
// document format follows the file extension (YAML, TOML or JSON).
package meta
