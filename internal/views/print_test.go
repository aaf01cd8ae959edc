package views

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/muurk/neptune-screen/internal/printer"
	"github.com/muurk/neptune-screen/internal/routes"
)

func makeFiles(n int) []printer.File {
	files := make([]printer.File, n)
	for i := range files {
		files[i] = printer.File{Filename: fmt.Sprintf("file%02d.gcode", i)}
	}
	return files
}

// slotCommands returns the list rendering for the given file names, padding
// the page with empty slots.
func slotCommands(names ...string) []string {
	var cmds []string
	for i := 0; i < FilesPerPage; i++ {
		if i < len(names) {
			cmds = append(cmds, fmt.Sprintf(`t%d.txt="%s"`, 10+i, names[i]), fmt.Sprintf("p%d.pic=193", 10+i))
			continue
		}
		cmds = append(cmds, fmt.Sprintf(`t%d.txt=""`, 10+i), fmt.Sprintf("p%d.pic=194", 10+i))
	}
	return cmds
}

func TestPrintShowRendersFirstPage(t *testing.T) {
	set, nav, p := newTestSet()
	p.files = makeFiles(3)

	if err := set.Print.Show(context.Background()); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	want := append([]string{"page 2 record=true"}, slotCommands("file00.gcode", "file01.gcode", "file02.gcode")...)
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display =\n%q\nwant\n%q", nav.log, want)
	}
}

func TestPrintShowRefreshFailure(t *testing.T) {
	set, nav, p := newTestSet()
	p.filesErr = errors.New("moonraker down")

	if err := set.Print.Show(context.Background()); err == nil {
		t.Error("Show() should report the refresh failure")
	}
	if len(nav.log) != 0 {
		t.Errorf("display = %q, want nothing", nav.log)
	}
}

func TestPrintPagination(t *testing.T) {
	tests := []struct {
		name     string
		files    int
		moves    []string
		wantPage int
	}{
		{"prev clamps at zero", 12, []string{"prev"}, 0},
		{"next advances", 12, []string{"next"}, 1},
		{"next stops at last page", 12, []string{"next", "next", "next", "next"}, 2},
		{"exact multiple has no empty page", 10, []string{"next", "next"}, 1},
		{"single page never advances", 5, []string{"next"}, 0},
		{"empty list never advances", 0, []string{"next"}, 0},
		{"next then prev", 12, []string{"next", "next", "prev"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, _, p := newTestSet()
			p.files = makeFiles(tt.files)
			if err := set.Print.Show(context.Background()); err != nil {
				t.Fatal(err)
			}
			for _, m := range tt.moves {
				var err error
				if m == "next" {
					err = set.Print.NextPage(context.Background())
				} else {
					err = set.Print.PrevPage(context.Background())
				}
				if err != nil {
					t.Fatal(err)
				}
			}
			if set.Print.page != tt.wantPage {
				t.Errorf("page = %d, want %d", set.Print.page, tt.wantPage)
			}
		})
	}
}

func TestPrintLastPageClearsUnusedSlots(t *testing.T) {
	set, nav, p := newTestSet()
	p.files = makeFiles(7)
	_ = set.Print.Show(context.Background())
	nav.log = nil

	if err := set.Print.NextPage(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := append([]string{"page 2 record=true"}, slotCommands("file05.gcode", "file06.gcode")...)
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display =\n%q\nwant\n%q", nav.log, want)
	}
}

func TestPrintFileAndConfirm(t *testing.T) {
	set, nav, p := newTestSet()
	p.files = makeFiles(7)
	_ = set.Print.Show(context.Background())
	_ = set.Print.NextPage(context.Background())
	nav.log = nil

	if err := set.Print.PrintFile(context.Background(), routes.Args{1}); err != nil {
		t.Fatalf("PrintFile() error = %v", err)
	}
	if set.Print.Selected() != "file06.gcode" {
		t.Errorf("Selected() = %q, want file06.gcode", set.Print.Selected())
	}
	want := []string{"page 18 record=false", `t0.txt="file06.gcode"`}
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display = %q, want %q", nav.log, want)
	}

	nav.log = nil
	if err := set.Print.PreviewConfirm(context.Background()); err != nil {
		t.Fatalf("PreviewConfirm() error = %v", err)
	}
	if !reflect.DeepEqual(p.calls, []string{"start:file06.gcode"}) {
		t.Errorf("printer calls = %q", p.calls)
	}
	if !reflect.DeepEqual(nav.log, []string{"page 19 record=false"}) {
		t.Errorf("display = %q", nav.log)
	}
	if set.Print.Selected() != "" {
		t.Error("selection should clear after starting the print")
	}

	// A second confirm without a selection does nothing.
	if err := set.Print.PreviewConfirm(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(p.calls) != 1 {
		t.Errorf("printer calls = %q, want one start", p.calls)
	}
}

func TestPrintFileEmptySlot(t *testing.T) {
	set, nav, p := newTestSet()
	p.files = makeFiles(2)
	_ = set.Print.Show(context.Background())
	nav.log = nil

	err := set.Print.PrintFile(context.Background(), routes.Args{3})
	if !errors.Is(err, ErrEmptySlot) {
		t.Errorf("PrintFile(3) error = %v, want ErrEmptySlot", err)
	}
	if err := set.Print.PrintFile(context.Background(), routes.Args{9}); !errors.Is(err, routes.ErrInvalidArgument) {
		t.Errorf("PrintFile(9) error = %v, want ErrInvalidArgument", err)
	}
	if len(nav.log) != 0 || set.Print.Selected() != "" {
		t.Errorf("empty slot had side effects: %q", nav.log)
	}
}

func TestPreviewCancelReturnsToList(t *testing.T) {
	set, nav, p := newTestSet()
	p.files = makeFiles(1)
	_ = set.Print.Show(context.Background())
	_ = set.Print.PrintFile(context.Background(), routes.Args{0})
	nav.log = nil

	if err := set.Print.PreviewCancel(context.Background()); err != nil {
		t.Fatal(err)
	}
	if set.Print.Selected() != "" {
		t.Error("cancel should clear the selection")
	}
	if len(nav.log) == 0 || nav.log[0] != "page 2 record=true" {
		t.Errorf("display = %q, want the file list", nav.log)
	}
}

func TestShowClampsPageWhenFilesShrink(t *testing.T) {
	set, _, p := newTestSet()
	p.files = makeFiles(12)
	_ = set.Print.Show(context.Background())
	_ = set.Print.NextPage(context.Background())
	_ = set.Print.NextPage(context.Background())

	p.files = makeFiles(3)
	if err := set.Print.Show(context.Background()); err != nil {
		t.Fatal(err)
	}
	if set.Print.page != 0 {
		t.Errorf("page = %d, want 0 after the list shrank", set.Print.page)
	}
}

func TestPrintControls(t *testing.T) {
	set, nav, p := newTestSet()
	ctx := context.Background()

	_ = set.Print.Pause(ctx)
	_ = set.Print.Stop(ctx)
	_ = set.Print.EmergencyShutdown(ctx)
	_ = set.Print.ShowSettings(ctx)

	if !reflect.DeepEqual(p.calls, []string{"pause", "cancel", "estop"}) {
		t.Errorf("printer calls = %q", p.calls)
	}
	if !reflect.DeepEqual(nav.log, []string{"page 27 record=true"}) {
		t.Errorf("display = %q", nav.log)
	}
}
