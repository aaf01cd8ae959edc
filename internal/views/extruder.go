package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/muurk/neptune-screen/internal/protocol"
	"github.com/muurk/neptune-screen/internal/routes"
)

const (
	// DefaultExtruderMinTemp is the lowest nozzle temperature extrusion is allowed at
	DefaultExtruderMinTemp = 170

	// DefaultExtrudeLength in mm
	DefaultExtrudeLength = 50

	// DefaultExtrudeSpeed in mm/min
	DefaultExtrudeSpeed = 150
)

// PrepareExtruder is the manual extrude and retract page. Extrusion is
// refused below the minimum temperature and the cold-nozzle page offers to
// heat up instead.
type PrepareExtruder struct {
	nav     Navigator
	printer Printer

	minTemp float64
	length  int
	speed   int
}

func newPrepareExtruder(nav Navigator, p Printer, opts Options) *PrepareExtruder {
	v := &PrepareExtruder{
		nav:     nav,
		printer: p,
		minTemp: opts.ExtruderMinTemp,
		length:  opts.ExtrudeLength,
		speed:   opts.ExtrudeSpeed,
	}
	if v.minTemp <= 0 {
		v.minTemp = DefaultExtruderMinTemp
	}
	if v.length <= 0 {
		v.length = DefaultExtrudeLength
	}
	if v.speed <= 0 {
		v.speed = DefaultExtrudeSpeed
	}
	return v
}

// Length returns the extrusion length in mm.
func (v *PrepareExtruder) Length() int {
	return v.length
}

// Speed returns the extrusion speed in mm/min.
func (v *PrepareExtruder) Speed() int {
	return v.speed
}

// Show displays the extruder page with the current length and speed.
func (v *PrepareExtruder) Show(ctx context.Context) error {
	if err := v.nav.Navigate(ctx, PageExtruder, true); err != nil {
		return err
	}
	return v.nav.Send(ctx,
		protocol.SetText("filamentlength", strconv.Itoa(v.length)),
		protocol.SetText("filamentspeed", strconv.Itoa(v.speed)),
	)
}

// Move extrudes ("+") or retracts ("-") the configured length. A nozzle
// below the minimum temperature, or of unknown temperature, shows the
// cold-nozzle page instead.
func (v *PrepareExtruder) Move(ctx context.Context, args routes.Args) error {
	sign, err := args.String(0)
	if err != nil {
		return err
	}
	if err := checkSign(sign); err != nil {
		return err
	}

	temp, ok := v.printer.Status().Float(HeaterExtruder, "temperature")
	if !ok || temp < v.minTemp {
		return v.nav.Navigate(ctx, PageExtruderCold, false)
	}

	script := fmt.Sprintf("M83\nG1 E%s F%d", signed(sign, strconv.Itoa(v.length)), v.speed)
	return v.printer.GCode(ctx, script)
}

// ConfirmTemp heats the nozzle to the minimum temperature and returns to
// the extruder page.
func (v *PrepareExtruder) ConfirmTemp(ctx context.Context) error {
	if err := v.printer.GCode(ctx, SetHeaterTemperature(HeaterExtruder, v.minTemp)); err != nil {
		return err
	}
	return v.nav.Navigate(ctx, PageExtruder, false)
}

// CancelTemp returns to the extruder page without heating.
func (v *PrepareExtruder) CancelTemp(ctx context.Context) error {
	return v.nav.Navigate(ctx, PageExtruder, false)
}

// SetWidth sets the extrusion length to the typed value.
func (v *PrepareExtruder) SetWidth(ctx context.Context, args routes.Args) error {
	length, err := positiveInt(args)
	if err != nil {
		return err
	}
	v.length = length
	return v.nav.Send(ctx, protocol.SetText("filamentlength", strconv.Itoa(v.length)))
}

// SetSpeed sets the extrusion speed to the typed value.
func (v *PrepareExtruder) SetSpeed(ctx context.Context, args routes.Args) error {
	speed, err := positiveInt(args)
	if err != nil {
		return err
	}
	v.speed = speed
	return v.nav.Send(ctx, protocol.SetText("filamentspeed", strconv.Itoa(v.speed)))
}

func positiveInt(args routes.Args) (int, error) {
	n, err := args.Int(0)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d must be positive", routes.ErrInvalidArgument, n)
	}
	return n, nil
}
