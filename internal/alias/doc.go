// Package alias resolves an entity name into the ordered list of name
// variants that a scan searches for.
//
// The list always starts with the trimmed name itself. It is followed by
// the seed aliases registered for the name (matched case-insensitively),
// and then, when discovery is enabled, by up to five titles returned by a
// Discoverer. Entries are deduplicated by exact string equality.
package alias
