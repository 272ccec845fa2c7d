// Package main hosts the logonorm CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, wires the catalog client,
// the AI matcher, and the rename executor into a workflow.Runner, and renders
// results as tables. Interactive triage of the review queue, undo, and run
// history are surfaced as separate commands.
//
// Keep this package thin: behaviour belongs in the internal packages and is
// only assembled and printed here.
package main
