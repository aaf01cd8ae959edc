package views

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/logging"
	"github.com/muurk/neptune-screen/internal/printer"
	"github.com/muurk/neptune-screen/internal/protocol"
	"github.com/muurk/neptune-screen/internal/routes"
)

const (
	// FilesPerPage is the number of slots on the file list page
	FilesPerPage = 5

	// First slot widget number; slots are t10..t14 and p10..p14
	firstSlotWidget = 10

	picFile  = 193
	picEmpty = 194
)

// Print is the file browser, print preview and printing page.
type Print struct {
	nav     Navigator
	printer Printer

	files    []printer.File
	page     int
	selected string
}

func newPrint(nav Navigator, p Printer) *Print {
	return &Print{nav: nav, printer: p}
}

// Show refreshes the file list and displays the current list page.
func (v *Print) Show(ctx context.Context) error {
	files, err := v.printer.Files(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh file list: %w", err)
	}
	v.files = files
	if last := v.lastPage(); v.page > last {
		v.page = last
	}
	return v.render(ctx)
}

// PrevPage moves one list page back. It stops at the first page.
func (v *Print) PrevPage(ctx context.Context) error {
	if v.page == 0 {
		return nil
	}
	v.page--
	return v.render(ctx)
}

// NextPage moves one list page forward while more files remain.
func (v *Print) NextPage(ctx context.Context) error {
	if (v.page+1)*FilesPerPage >= len(v.files) {
		return nil
	}
	v.page++
	return v.render(ctx)
}

// PrintFile selects the file in a slot of the current page and shows the
// preview page.
func (v *Print) PrintFile(ctx context.Context, args routes.Args) error {
	slot, err := args.Int(0)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= FilesPerPage {
		return fmt.Errorf("%w: slot %d out of range", routes.ErrInvalidArgument, slot)
	}
	idx := v.page*FilesPerPage + slot
	if idx >= len(v.files) {
		return fmt.Errorf("%w: slot %d on page %d", ErrEmptySlot, slot, v.page)
	}

	file := v.files[idx]
	v.selected = file.Filename
	if file.HasThumbnail() {
		logging.Debug("Selected file has a preview", zap.String("thumbnail", file.Thumbnail))
	}

	if err := v.nav.Navigate(ctx, PagePreview, false); err != nil {
		return err
	}
	return v.nav.Send(ctx, protocol.SetText("t0", file.Filename))
}

// Selected returns the file waiting for confirmation, if any.
func (v *Print) Selected() string {
	return v.selected
}

// PreviewConfirm starts the selected file and shows the printing page.
func (v *Print) PreviewConfirm(ctx context.Context) error {
	if v.selected == "" {
		return nil
	}
	filename := v.selected
	if err := v.printer.StartPrint(ctx, filename); err != nil {
		return fmt.Errorf("failed to start %s: %w", filename, err)
	}
	v.selected = ""
	return v.ShowStatus(ctx)
}

// PreviewCancel drops the selection and returns to the file list.
func (v *Print) PreviewCancel(ctx context.Context) error {
	v.selected = ""
	return v.Show(ctx)
}

// ShowStatus displays the printing page without recording it.
func (v *Print) ShowStatus(ctx context.Context) error {
	return v.nav.Navigate(ctx, PagePrinting, false)
}

// ShowSettings displays the in-print settings page.
func (v *Print) ShowSettings(ctx context.Context) error {
	return v.nav.Navigate(ctx, PagePrintSettings, true)
}

// Pause pauses or resumes the running print.
func (v *Print) Pause(ctx context.Context) error {
	return v.printer.TogglePause(ctx)
}

// Stop cancels the running print.
func (v *Print) Stop(ctx context.Context) error {
	return v.printer.CancelPrint(ctx)
}

// EmergencyShutdown halts the printer.
func (v *Print) EmergencyShutdown(ctx context.Context) error {
	return v.printer.EmergencyStop(ctx)
}

func (v *Print) lastPage() int {
	if len(v.files) == 0 {
		return 0
	}
	return (len(v.files) - 1) / FilesPerPage
}

// render shows the file list page and fills its slots.
func (v *Print) render(ctx context.Context) error {
	if err := v.nav.Navigate(ctx, PageFileList, true); err != nil {
		return err
	}

	commands := make([]string, 0, 2*FilesPerPage)
	offset := v.page * FilesPerPage
	for i := 0; i < FilesPerPage; i++ {
		widget := firstSlotWidget + i
		text := fmt.Sprintf("t%d", widget)
		pic := fmt.Sprintf("p%d", widget)

		if idx := offset + i; idx < len(v.files) {
			commands = append(commands,
				protocol.SetText(text, v.files[idx].Filename),
				protocol.SetPic(pic, picFile),
			)
			continue
		}
		commands = append(commands,
			protocol.SetText(text, ""),
			protocol.SetPic(pic, picEmpty),
		)
	}
	return v.nav.Send(ctx, commands...)
}
