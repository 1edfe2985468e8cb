package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

func renderText(stories []model.Story, _ time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("USER STORIES\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for i, st := range stories {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, st.Story)
		b.WriteString("   Acceptance Criteria:\n")
		for j, c := range st.EffectiveCriteria() {
			fmt.Fprintf(&b, "   %d. %s\n", j+1, c)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
