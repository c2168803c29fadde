//go:build e2e

// Package e2e provides browser-in-the-loop tests for the join state machine
// and the test coordinator.
//
// These tests are isolated from the standard test suite via build tags. They
// require a Chrome browser (auto-downloaded by Rod if not present) and are
// intended for CI pipelines or explicit local testing.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// Each test serves a self-contained synthetic conferencing UI from a local
// HTTP server and drives a real headless Chrome at it. The fixture mimics
// both client generations of the audio dialog and takes query parameters to
// simulate echo-test, audio-failure and ambiguous-verification behavior, so
// every branch of the state machine can be exercised without a conference
// server.
package e2e
