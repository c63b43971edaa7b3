// Package sessions persists the transient processing-session ledger in
// SQLite. The ledger exists for workspace lifecycle bookkeeping (the reaper
// sweeps workspaces whose grace window elapsed, including across daemon
// restarts) and operator visibility; it never stores artifact content and
// released rows are pruned shortly after their workspace is gone.
package sessions
