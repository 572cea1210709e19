package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deepresearch-ai/deepresearch/core"
)

// MarkdownStore persists session records as human-readable markdown files in
// an output directory: research_plan_<id>.md, research_progress_<id>.md
// (appended once per round) and final_report_<id>.md. Writes are
// last-write-wins; the directory is created on demand.
type MarkdownStore struct {
	dir string
	now func() time.Time
}

// NewMarkdownStore constructs a markdown-backed session memory rooted at dir.
func NewMarkdownStore(dir string) *MarkdownStore {
	return &MarkdownStore{dir: dir, now: time.Now}
}

func (s *MarkdownStore) ensureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

func (s *MarkdownStore) planPath(sessionID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("research_plan_%s.md", sessionID))
}

func (s *MarkdownStore) progressPath(sessionID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("research_progress_%s.md", sessionID))
}

func (s *MarkdownStore) reportPath(sessionID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("final_report_%s.md", sessionID))
}

// RecordPlan writes the research plan file.
func (s *MarkdownStore) RecordPlan(sessionID, query string, plan core.ResearchPlan) (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Research Plan\n")
	fmt.Fprintf(&b, "**Generated**: %s\n", s.now().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Query**: %s\n", query)
	fmt.Fprintf(&b, "**Complexity**: %s\n\n", plan.Complexity)
	fmt.Fprintf(&b, "## Strategy\n%s\n\n## Subtasks\n", plan.Strategy)
	for i, task := range plan.Subtasks {
		fmt.Fprintf(&b, "\n### Task %d: %s\n", i+1, task.ID)
		fmt.Fprintf(&b, "- **Objective**: %s\n", task.Objective)
		fmt.Fprintf(&b, "- **Search Strategy**: %s\n", task.SearchStrategy)
		fmt.Fprintf(&b, "- **Output Format**: %s\n", task.OutputFormat)
		fmt.Fprintf(&b, "- **Tool Guidance**: %s\n", task.ToolGuidance)
		fmt.Fprintf(&b, "- **Boundaries**: %s\n", task.Boundaries)
	}

	path := s.planPath(sessionID)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}
	return path, nil
}

// RecordRound appends one round's findings and synthesis to the progress file.
func (s *MarkdownStore) RecordRound(sessionID string, round int, findings []core.Finding, synthesisText string) (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := s.progressPath(sessionID)
	existing, err := os.ReadFile(path)
	if err != nil {
		existing = []byte(fmt.Sprintf("# Research Progress\n**Session**: %s\n**Started**: %s\n\n---\n",
			sessionID, s.now().Format(time.RFC3339)))
	}

	var b strings.Builder
	b.Write(existing)
	fmt.Fprintf(&b, "\n## Round %d\n**Time**: %s\n\n### Findings\n", round, s.now().Format("15:04:05"))
	for _, f := range findings {
		fmt.Fprintf(&b, "\n#### %s\n**Confidence**: %.0f%%\n\n%s\n", f.TaskID, f.Confidence*100, f.Narrative)
		if len(f.Sources) > 0 {
			b.WriteString("\n**Sources**:\n")
			for _, src := range f.Sources {
				fmt.Fprintf(&b, "- [%s](%s)\n", orUnknown(src.Title), src.URL)
			}
		}
		if len(f.Gaps) > 0 {
			b.WriteString("\n**Gaps**:\n")
			for _, gap := range f.Gaps {
				fmt.Fprintf(&b, "- %s\n", gap)
			}
		}
	}
	if synthesisText != "" {
		fmt.Fprintf(&b, "\n### Synthesis\n%s\n", synthesisText)
	}
	b.WriteString("\n---\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write progress: %w", err)
	}
	return path, nil
}

// RecordFinalReport writes the cited final report with its bibliography.
func (s *MarkdownStore) RecordFinalReport(sessionID, report string, sources []core.Source) (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Research Report\n**Generated**: %s\n\n%s\n\n---\n\n## Sources\n",
		s.now().Format(time.RFC3339), report)
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] [%s](%s)\n", i+1, orUnknown(src.Title), src.URL)
	}

	path := s.reportPath(sessionID)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func orUnknown(title string) string {
	if title == "" {
		return "Unknown Source"
	}
	return title
}
