// Package model defines the reasoning-service abstraction used by the
// planner, workers, synthesis engine and citation step: a single-method
// Model interface plus the normalized request/response shapes shared across
// providers. Concrete adapters live in subpackages (anthropic, openai,
// gemini); provider selection is a wiring concern at the module boundary and
// never leaks into the orchestration core.
package model
