package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Result is a success or failure box printed when a command finishes.
type Result struct {
	Failed          bool
	Title           string
	Details         []Param
	Error           error
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success box.
func NewSuccessResult(title string, details ...Param) *Result {
	return &Result{
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure box.
func NewFailureResult(title string, err error, troubleshooting ...string) *Result {
	return &Result{
		Failed:          true,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// AddDetail appends a detail line.
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Param{Key: key, Value: value})
	return r
}

// Render returns the styled box.
func (r *Result) Render() string {
	width := clampWidth(r.Width)

	color := SuccessColor
	title := SuccessTitleStyle.Render(fmt.Sprintf(" %s  SUCCESS  ─  %s", SuccessMarker, r.Title))
	if r.Failed {
		color = ErrorColor
		title = ErrorTitleStyle.Render(fmt.Sprintf(" %s  FAILED  ─  %s", FailureMarker, r.Title))
	}

	lines := []string{"", title, ""}
	for _, d := range r.Details {
		lines = append(lines, " "+KeyStyle.Render(d.Key+":")+ValueStyle.Render(d.Value))
	}
	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render(" Error: "+r.Error.Error()))
	}
	if len(r.Troubleshooting) > 0 {
		lines = append(lines, "")
		for _, tip := range r.Troubleshooting {
			lines = append(lines, TroubleshootingItemStyle.Render(" • "+tip))
		}
	}
	lines = append(lines, "")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width - 2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func (r *Result) String() string {
	return r.Render()
}
