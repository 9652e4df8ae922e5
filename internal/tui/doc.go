// Package tui provides the interactive terminal monitor.
//
// The monitor subscribes to model notifications and redraws the mirrored
// device/property tree as servers report changes. It is a pure observer:
// nothing in this package mutates the model.
//
// Rendering is built on Bubble Tea with Lip Gloss styling. Model callbacks
// run under the model lock, so they only signal a buffered channel; snapshot
// building happens on the Bubble Tea event loop via Client.View.
package tui
