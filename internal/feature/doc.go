// Package feature contains holonet's built-in features. They are thin
// collaborators: each registers with the lifecycle orchestrator, reads its
// module setting and talks to the host through the host interfaces. The
// interesting sequencing lives in the lifecycle and hook packages.
package feature
