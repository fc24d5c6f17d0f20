// Package paramsync keeps a form.Controller and a remote painter in step.
//
// An Engine moves through three states:
//
//	Uninitialized --Mount ok--> Loaded --edit--> Editing <--> Idle
//
// Mount performs the only read needed to make the form usable. Until it
// succeeds there is no form at all.
//
// In live mode every edit triggers one write of the full working copy.
// Writes run concurrently in their own goroutines, are never retried and
// never block further edits; a failed write is only logged. Whichever
// write is acknowledged with the highest sequence number becomes the last
// known remote state.
//
// In manual mode edits stay local until Save. Load throws local edits away
// by restoring the last known remote state without touching the network;
// Reload does a fresh read.
package paramsync
