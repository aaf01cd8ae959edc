package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/neptune-screen/internal/routes"
)

// RenderRoutes lists a routing table grouped by page.
func RenderRoutes(table *routes.Table) string {
	keyCol := lipgloss.NewStyle().Width(18)

	var b strings.Builder
	page := -1
	for _, key := range table.Keys() {
		if key.Page != page {
			page = key.Page
			title := fmt.Sprintf("Page %d", page)
			if name := table.PageName(page); name != "" {
				title += " · " + name
			}
			b.WriteString(SectionStyle.Render(title) + "\n")
			b.WriteString("  " + TableHeaderStyle.Render(keyCol.Render("INPUT")+"TARGET") + "\n")
		}
		target, _ := table.Lookup(key)
		input := fmt.Sprintf("%s %d", key.Kind, key.Action)
		b.WriteString("  " + keyCol.Render(input) + ValueStyle.Render(target.String()) + "\n")
	}
	return b.String()
}
