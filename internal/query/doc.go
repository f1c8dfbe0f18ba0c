// Package query expands aliases into a bank of search queries.
//
// Each alias is combined with a fixed list of legal-entity suffixes and a
// fixed list of adverse keywords. For every suffix the bare name is emitted
// first, followed by "name keyword" and "keyword name" for each keyword.
// The output is deduplicated while preserving first-seen order, so callers
// can slice the bank (e.g. the first 24 queries) and get the most generic
// queries first.
package query
