package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

func renderMarkdown(stories []model.Story, now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("# User Stories with Acceptance Criteria\n\n")
	fmt.Fprintf(&b, "*%s*\n\n", generatedOn(now))
	b.WriteString("---\n\n")

	for i, st := range stories {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, st.Story)
		b.WriteString("### Acceptance Criteria:\n\n")
		for j, c := range st.EffectiveCriteria() {
			fmt.Fprintf(&b, "%d. %s\n", j+1, c)
		}
		b.WriteString("\n---\n\n")
	}
	return b.String(), nil
}
