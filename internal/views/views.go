package views

import (
	"context"

	"github.com/muurk/neptune-screen/internal/printer"
	"github.com/muurk/neptune-screen/internal/routes"
	"github.com/muurk/neptune-screen/internal/status"
)

// Page numbers of the stock screen layout
const (
	PageMain          = 1
	PageFileList      = 2
	PageTemperature   = 6
	PageMove          = 8
	PageExtruder      = 9
	PageSettings      = 11
	PagePreview       = 18
	PagePrinting      = 19
	PagePrintSettings = 27
	PageExtruderCold  = 37
	PageBoot          = 109
)

// Navigator is the navigation engine as seen by the views.
type Navigator interface {
	Navigate(ctx context.Context, page int, record bool) error
	Back(ctx context.Context) error
	Send(ctx context.Context, commands ...string) error
}

// Printer is the printer as seen by the views.
type Printer interface {
	Status() status.Snapshot
	Printing() bool
	GCode(ctx context.Context, script string) error
	StartPrint(ctx context.Context, filename string) error
	TogglePause(ctx context.Context) error
	CancelPrint(ctx context.Context) error
	EmergencyStop(ctx context.Context) error
	Files(ctx context.Context) ([]printer.File, error)
}

// Options tune view behaviour. Zero values take the defaults.
type Options struct {
	Presets         map[string]Preset
	ExtruderMinTemp float64
	ExtrudeLength   int
	ExtrudeSpeed    int
}

// Set holds one instance of every view. View state lives in these instances
// and survives for the life of the process.
type Set struct {
	Nav             *Nav
	Prepare         *Prepare
	Main            *Main
	Print           *Print
	PrepareMove     *PrepareMove
	PrepareTemp     *PrepareTemp
	PrepareExtruder *PrepareExtruder
	Settings        *Settings
	Level           *Level
}

// New builds the view set.
func New(nav Navigator, p Printer, opts Options) *Set {
	presets := opts.Presets
	if len(presets) == 0 {
		presets = DefaultPresets
	}

	return &Set{
		Nav:             &Nav{nav: nav},
		Prepare:         &Prepare{nav: nav},
		Main:            &Main{nav: nav},
		Print:           newPrint(nav, p),
		PrepareMove:     newPrepareMove(nav, p),
		PrepareTemp:     &PrepareTemp{nav: nav, printer: p, presets: presets},
		PrepareExtruder: newPrepareExtruder(nav, p, opts),
		Settings:        &Settings{nav: nav},
		Level:           &Level{},
	}
}

// Operations returns the closed operation table for the router.
func (s *Set) Operations() routes.Operations {
	ops := routes.Operations{}

	ops.Add("nav", "page", s.Nav.Page)
	ops.Add("nav", "back", s.Nav.Back)

	ops.Add("Prepare", "show", noArgs(s.Prepare.Show))
	ops.Add("Main", "show", noArgs(s.Main.Show))

	ops.Add("Print", "show", noArgs(s.Print.Show))
	ops.Add("Print", "back", s.Nav.Back)
	ops.Add("Print", "prev_page", noArgs(s.Print.PrevPage))
	ops.Add("Print", "next_page", noArgs(s.Print.NextPage))
	ops.Add("Print", "print_file", s.Print.PrintFile)
	ops.Add("Print", "preview_confirm", noArgs(s.Print.PreviewConfirm))
	ops.Add("Print", "preview_cancel", noArgs(s.Print.PreviewCancel))
	ops.Add("Print", "print_status", noArgs(s.Print.ShowStatus))
	ops.Add("Print", "pause", noArgs(s.Print.Pause))
	ops.Add("Print", "stop", noArgs(s.Print.Stop))
	ops.Add("Print", "emergency_shutdown", noArgs(s.Print.EmergencyShutdown))
	ops.Add("Print", "settings", noArgs(s.Print.ShowSettings))

	ops.Add("PrepareMove", "show", noArgs(s.PrepareMove.Show))
	ops.Add("PrepareMove", "back", s.Nav.Back)
	ops.Add("PrepareMove", "move_width", s.PrepareMove.MoveWidth)
	ops.Add("PrepareMove", "move_home", s.PrepareMove.MoveHome)
	ops.Add("PrepareMove", "move_axis", s.PrepareMove.MoveAxis)
	ops.Add("PrepareMove", "move_toggle_fan", noArgs(s.PrepareMove.ToggleFan))

	ops.Add("PrepareTemp", "show", noArgs(s.PrepareTemp.Show))
	ops.Add("PrepareTemp", "back", s.Nav.Back)
	ops.Add("PrepareTemp", "extruder_off", noArgs(s.PrepareTemp.ExtruderOff))
	ops.Add("PrepareTemp", "bed_off", noArgs(s.PrepareTemp.BedOff))
	ops.Add("PrepareTemp", "outerbed_off", noArgs(s.PrepareTemp.OuterBedOff))
	ops.Add("PrepareTemp", "set_extruder_target", s.PrepareTemp.SetExtruderTarget)
	ops.Add("PrepareTemp", "set_bed_target", s.PrepareTemp.SetBedTarget)
	ops.Add("PrepareTemp", "set_outerbed_target", s.PrepareTemp.SetOuterBedTarget)
	ops.Add("PrepareTemp", "material", s.PrepareTemp.Material)

	ops.Add("PrepareExtruder", "show", noArgs(s.PrepareExtruder.Show))
	ops.Add("PrepareExtruder", "back", s.Nav.Back)
	ops.Add("PrepareExtruder", "move", s.PrepareExtruder.Move)
	ops.Add("PrepareExtruder", "confirm_temp", noArgs(s.PrepareExtruder.ConfirmTemp))
	ops.Add("PrepareExtruder", "cancel_temp", noArgs(s.PrepareExtruder.CancelTemp))
	ops.Add("PrepareExtruder", "set_width", s.PrepareExtruder.SetWidth)
	ops.Add("PrepareExtruder", "set_speed", s.PrepareExtruder.SetSpeed)

	ops.Add("Settings", "show", noArgs(s.Settings.Show))
	ops.Add("Settings", "back", s.Nav.Back)

	ops.Add("Level", "show", noArgs(s.Level.Show))

	return ops
}

// Home shows the page the screen should rest on: the printing page while a
// print is running, the main menu otherwise.
func (s *Set) Home(ctx context.Context) error {
	if s.Print.printer.Printing() {
		return s.Print.ShowStatus(ctx)
	}
	return s.Main.Show(ctx)
}

func noArgs(fn func(ctx context.Context) error) routes.Operation {
	return func(ctx context.Context, _ routes.Args) error {
		return fn(ctx)
	}
}

// Nav exposes plain navigation to the routing table.
type Nav struct {
	nav Navigator
}

// Page navigates to the page given as the first argument.
func (n *Nav) Page(ctx context.Context, args routes.Args) error {
	page, err := args.Int(0)
	if err != nil {
		return err
	}
	return n.nav.Navigate(ctx, page, true)
}

// Back returns to the previous page.
func (n *Nav) Back(ctx context.Context, _ routes.Args) error {
	return n.nav.Back(ctx)
}

// Prepare is the boot splash shown while the printer comes up.
type Prepare struct {
	nav Navigator
}

// Show displays the boot page without recording it.
func (p *Prepare) Show(ctx context.Context) error {
	return p.nav.Navigate(ctx, PageBoot, false)
}

// Main is the top level menu.
type Main struct {
	nav Navigator
}

// Show displays the main menu.
func (m *Main) Show(ctx context.Context) error {
	return m.nav.Navigate(ctx, PageMain, true)
}

// Settings is the settings menu. Its sub-pages are plain nav routes.
type Settings struct {
	nav Navigator
}

// Show displays the settings menu.
func (s *Settings) Show(ctx context.Context) error {
	return s.nav.Navigate(ctx, PageSettings, true)
}
