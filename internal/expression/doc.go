// Package expression evaluates per-item expressions for the local host.
//
// Two forms are supported. Expressions use expr-lang/expr syntax and see the
// current item as variables:
//
//   - json: the item payload
//   - params: the item's parameter overrides
//   - index: the zero-based item index
//
// References are RFC 6901 JSON pointers into the item payload.
//
// Parameter values are resolved by ResolveValue:
//
//	"=json.email"               expression, evaluated per item
//	"=index == 0 ? 'first' : ''"
//	"$ref:/contact/id"          JSON pointer into json
//	"plain"                     used as is
//
// The --when predicate is a boolean expression over the same variables:
//
//	json.status == "open" && has(json.labels, "vip")
//
// The expr library reserves "contains" as a string operator, so use "in" or
// has() for membership checks.
package expression
