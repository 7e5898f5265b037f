// Package batch groups remote objects into size-bounded transfer units.
//
// Bulk transfers of many small objects pay a fixed scheduling cost per task.
// Instead of dispatching one task per object, callers pack consecutive
// objects into groups whose combined size stays within a byte budget and
// dispatch one task per group. Workers then move a comparable number of
// bytes each, regardless of how object sizes are distributed.
//
// # Packing
//
// [Pack] walks the input exactly once, in order. Each object is appended to
// the current group unless doing so would push the group past the budget;
// in that case the current group is sealed and a new one is started. An
// object larger than the whole budget still gets placed and ends up alone
// in its group.
//
// Properties:
//   - Input order is preserved: concatenating the groups yields the input.
//   - No group exceeds the budget, except a single oversized object.
//   - An object whose size exactly fills the remaining budget is kept in
//     the current group.
//   - Zero-size objects never seal a group that is within budget.
//
// [Pack] requires resolved sizes. A negative Size means the caller skipped
// size resolution, which is a programming error here, so Pack panics.
// For per-object dispatch without sizing, use [Singletons] or pass a
// non-positive budget.
//
// See example_test.go for usage examples.
package batch
