// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Boot sessions and kernel events carry these identifiers; callers should treat
// them as opaque strings.
package idgen
