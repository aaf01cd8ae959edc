// Package status keeps the printer status tree that Moonraker streams to
// subscribers.
//
// The first subscribe response installs a full tree with Store.Replace; every
// notify_status_update afterwards carries only the attributes that changed and
// is folded in with Store.Merge. Merge is a recursive union where leaves are
// last-write-wins, so applying the same delta twice is harmless but deltas must
// be applied in arrival order.
//
// Readers take a Snapshot, a deep copy that can be inspected without locks.
// Snapshot accessors return (value, ok) and never assume a branch exists.
package status
