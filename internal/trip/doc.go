// Package trip holds the trip-planning orchestrator. A Session owns the
// discovered candidates, the user's selection, and one request lifecycle per
// intent ("discover", "plan"). Remote work runs off the event loop as Jobs;
// their Results are applied back on the loop, where stale completions are
// dropped by token comparison.
package trip
