// Package resolve implements key inference and relationship resolution.
//
// The resolver detects primary keys over full materialized row sets,
// matches foreign-key-shaped columns against known tables by name stem
// and value domain, and maintains the pending-relationship worklist that
// is swept after every newly materialized table. Deferred resolution is
// an explicit worklist, never retried via errors or recursion.
package resolve
