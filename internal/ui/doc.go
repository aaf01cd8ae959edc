// Package ui renders the terminal output of the neptune-screen commands.
//
// The components follow a print-and-exit pattern: a Header at the start of a
// command, a spinner while it blocks, and a Result box at the end. The only
// Bubble Tea program is the spinner; everything else is plain lipgloss output
// written through a Printer.
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader(ui.NewHeader("Moonraker discovery", "neptune-screen discover"))
//	err := p.RunWithSpinner(ctx, "Scanning...", func(ctx context.Context) error {
//	    found, err = scanner.Scan(ctx)
//	    return err
//	})
//
// Logging stays silent while these components draw unless NEPTUNE_LOG_LEVEL
// is set.
package ui
