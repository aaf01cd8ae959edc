package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/neptune-screen/internal/protocol"
	"github.com/muurk/neptune-screen/internal/routes"
)

const (
	// Picture showing the 1mm step selected
	picStepOneMM = 11

	defaultMoveDistance = 1.0
)

// PrepareMove is the jog page: step selection, homing, axis moves and the
// part cooling fan.
type PrepareMove struct {
	nav     Navigator
	printer Printer

	distance float64
}

func newPrepareMove(nav Navigator, p Printer) *PrepareMove {
	return &PrepareMove{nav: nav, printer: p, distance: defaultMoveDistance}
}

// Distance returns the current jog step in mm.
func (v *PrepareMove) Distance() float64 {
	return v.distance
}

// Show displays the jog page with the 1mm step selected.
func (v *PrepareMove) Show(ctx context.Context) error {
	v.distance = defaultMoveDistance
	if err := v.nav.Navigate(ctx, PageMove, true); err != nil {
		return err
	}
	return v.nav.Send(ctx, protocol.SetPic("p0", picStepOneMM))
}

// MoveWidth selects the jog step. Args: picture id of the step button, step in mm.
func (v *PrepareMove) MoveWidth(ctx context.Context, args routes.Args) error {
	pic, err := args.Int(0)
	if err != nil {
		return err
	}
	distance, err := args.Float(1)
	if err != nil {
		return err
	}
	if distance <= 0 {
		return fmt.Errorf("%w: step %v must be positive", routes.ErrInvalidArgument, distance)
	}
	v.distance = distance
	return v.nav.Send(ctx, protocol.SetPic("p0", pic))
}

// MoveHome homes one axis, or all axes when no axis is given.
func (v *PrepareMove) MoveHome(ctx context.Context, args routes.Args) error {
	axis, err := args.StringOr(0, "")
	if err != nil {
		return err
	}
	if axis == "" {
		return v.printer.GCode(ctx, "G28")
	}
	name, err := parseAxis(axis)
	if err != nil {
		return err
	}
	return v.printer.GCode(ctx, "G28 "+name)
}

// MoveAxis jogs one axis by the current step. Args: sign ("+" or "-"), axis.
// The move is relative and absolute positioning is restored afterwards.
func (v *PrepareMove) MoveAxis(ctx context.Context, args routes.Args) error {
	sign, err := args.String(0)
	if err != nil {
		return err
	}
	if err := checkSign(sign); err != nil {
		return err
	}
	axisArg, err := args.String(1)
	if err != nil {
		return err
	}
	axis, err := parseAxis(axisArg)
	if err != nil {
		return err
	}

	// Klippy stops a script at its first error, so G90 goes out on its own
	// and is sent even when the move fails.
	err = v.printer.GCode(ctx, "G91")
	if err == nil {
		err = v.printer.GCode(ctx, fmt.Sprintf("G1 %s%s", axis, signed(sign, formatNumber(v.distance))))
	}
	return errors.Join(err, v.printer.GCode(ctx, "G90"))
}

// ToggleFan switches the part cooling fan between off and full speed.
func (v *PrepareMove) ToggleFan(ctx context.Context) error {
	speed, _ := v.printer.Status().Float("fan", "speed")
	if speed == 0 {
		return v.printer.GCode(ctx, "M106 S255")
	}
	return v.printer.GCode(ctx, "M106 S0")
}

func parseAxis(axis string) (string, error) {
	switch a := strings.ToUpper(axis); a {
	case "X", "Y", "Z":
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown axis %q", routes.ErrInvalidArgument, axis)
}

func checkSign(sign string) error {
	if sign != "+" && sign != "-" {
		return fmt.Errorf("%w: direction %q, want + or -", routes.ErrInvalidArgument, sign)
	}
	return nil
}

// signed prefixes value with a minus for "-". Klipper takes bare positives.
func signed(sign, value string) string {
	if sign == "-" {
		return "-" + value
	}
	return value
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
