// Package core defines the domain contracts shared by every other package:
// the research data model (Subtask, Finding, Source, ResearchPlan,
// Synthesis), the session working state owned by the iteration engine, and
// the SessionMemory persistence port. Implementations live in sibling
// packages and are selected at wiring time; keeping the contracts here avoids
// dependency cycles between the orchestration layers.
package core
