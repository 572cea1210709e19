// Package memory contains concrete SessionMemory implementations. The port
// itself lives in the core package; depend on core.SessionMemory in your code
// and select an implementation (in-memory for tests, markdown for the CLI) at
// wiring time.
package memory
