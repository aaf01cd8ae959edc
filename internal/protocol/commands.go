package protocol

import (
	"fmt"
	"strings"
)

// Page returns the command that switches the display to page n.
func Page(n int) string {
	return fmt.Sprintf("page %d", n)
}

// SetText assigns a text component's txt attribute.
func SetText(widget, value string) string {
	return fmt.Sprintf(`%s.txt="%s"`, widget, escapeText(value))
}

// SetPic assigns a picture component's pic attribute.
func SetPic(widget string, pic int) string {
	return fmt.Sprintf("%s.pic=%d", widget, pic)
}

// SetVisible shows or hides a component.
func SetVisible(widget string, visible bool) string {
	v := 0
	if visible {
		v = 1
	}
	return fmt.Sprintf("vis %s,%d", widget, v)
}

// Call invokes a component method such as "printpause.cp0.close()".
func Call(widget, method string) string {
	return fmt.Sprintf("%s.%s()", widget, method)
}

// escapeText keeps quotes in file names from terminating the string literal.
func escapeText(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
