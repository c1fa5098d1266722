// Package preflight provides readiness checks for the directories, devices
// and external services mockinterview depends on.
//
// These checks run in two contexts:
//   - The daemon logs CheckSystemDeps at startup and reports it on the
//     status endpoint so a missing camera is visible before a session fails.
//   - The CLI "mockinterview status" command runs RunAll to display the
//     health of the data directory, the job catalog and the scoring model.
//
// Each check is gated by its config setting; unused backends are skipped.
package preflight
