// Package relevance decides whether a raw hit is about the screened entity.
//
// A Filter is built from the alias list of one scan and applies three
// rules in order, the first match wins:
//
//  1. Word match: a lower-cased alias occurs as a whole word in the
//     lower-cased "title summary" text.
//  2. Fuzzy title match: a lower-cased alias has a similarity ratio of at
//     least 0.78 against the lower-cased title.
//  3. Adverse keyword: the text mentions one of the adverse keywords,
//     whatever the alias match.
//
// Rule 3 keeps hits that never name the entity. It is the main source of
// false positives and is kept on purpose because a screening tool prefers
// recall; callers that need precision can inspect Match and ignore
// RuleAdverseKeyword.
package relevance
