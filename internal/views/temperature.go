package views

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/muurk/neptune-screen/internal/protocol"
	"github.com/muurk/neptune-screen/internal/routes"
)

// Heater names as Klipper knows them
const (
	HeaterExtruder = "extruder"
	HeaterBed      = "heater_bed"
	HeaterOuterBed = "heater_bed_outer"
)

// Preset is a pair of target temperatures for a material.
type Preset struct {
	Extruder float64 `yaml:"extruder"`
	Bed      float64 `yaml:"bed"`
}

// DefaultPresets are the stock material presets.
var DefaultPresets = map[string]Preset{
	"pla":  {Extruder: 205, Bed: 60},
	"abs":  {Extruder: 240, Bed: 80},
	"petg": {Extruder: 220, Bed: 70},
	"tpu":  {Extruder: 230, Bed: 50},
}

// heaterField maps each heater to its target field on the temperature page.
var heaterField = map[string]string{
	HeaterExtruder: "nozzle",
	HeaterBed:      "bed",
	HeaterOuterBed: "out_bed",
}

// SetHeaterTemperature returns the Klipper command setting a heater target.
func SetHeaterTemperature(heater string, target float64) string {
	return fmt.Sprintf("SET_HEATER_TEMPERATURE heater=%s target=%s", heater, formatNumber(target))
}

// PrepareTemp is the temperature page: heater targets and material presets.
type PrepareTemp struct {
	nav     Navigator
	printer Printer
	presets map[string]Preset
}

// Materials returns the preset names in sorted order.
func (v *PrepareTemp) Materials() []string {
	names := make([]string, 0, len(v.presets))
	for name := range v.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Show displays the temperature page filled with the current targets.
func (v *PrepareTemp) Show(ctx context.Context) error {
	if err := v.nav.Navigate(ctx, PageTemperature, true); err != nil {
		return err
	}

	snap := v.printer.Status()
	var commands []string
	for _, heater := range []string{HeaterExtruder, HeaterBed, HeaterOuterBed} {
		if target, ok := snap.Float(heater, "target"); ok {
			commands = append(commands, protocol.SetText(heaterField[heater], strconv.Itoa(int(target))))
		}
	}
	return v.nav.Send(ctx, commands...)
}

// ExtruderOff turns the nozzle heater off.
func (v *PrepareTemp) ExtruderOff(ctx context.Context) error {
	return v.setTarget(ctx, HeaterExtruder, 0)
}

// BedOff turns the bed heater off.
func (v *PrepareTemp) BedOff(ctx context.Context) error {
	return v.setTarget(ctx, HeaterBed, 0)
}

// OuterBedOff turns the outer bed heater off.
func (v *PrepareTemp) OuterBedOff(ctx context.Context) error {
	return v.setTarget(ctx, HeaterOuterBed, 0)
}

// SetExtruderTarget sets the nozzle target to the typed value.
func (v *PrepareTemp) SetExtruderTarget(ctx context.Context, args routes.Args) error {
	return v.setTargetArg(ctx, HeaterExtruder, args)
}

// SetBedTarget sets the bed target to the typed value.
func (v *PrepareTemp) SetBedTarget(ctx context.Context, args routes.Args) error {
	return v.setTargetArg(ctx, HeaterBed, args)
}

// SetOuterBedTarget sets the outer bed target to the typed value.
func (v *PrepareTemp) SetOuterBedTarget(ctx context.Context, args routes.Args) error {
	return v.setTargetArg(ctx, HeaterOuterBed, args)
}

// Material applies a preset to the nozzle and the bed.
func (v *PrepareTemp) Material(ctx context.Context, args routes.Args) error {
	name, err := args.String(0)
	if err != nil {
		return err
	}
	preset, ok := v.presets[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	if err := v.setTarget(ctx, HeaterExtruder, preset.Extruder); err != nil {
		return err
	}
	return v.setTarget(ctx, HeaterBed, preset.Bed)
}

func (v *PrepareTemp) setTargetArg(ctx context.Context, heater string, args routes.Args) error {
	target, err := args.Float(0)
	if err != nil {
		return err
	}
	if target < 0 {
		return fmt.Errorf("%w: negative target %v", routes.ErrInvalidArgument, target)
	}
	return v.setTarget(ctx, heater, target)
}

// setTarget sends the heater command and mirrors the value on the page.
func (v *PrepareTemp) setTarget(ctx context.Context, heater string, target float64) error {
	if err := v.printer.GCode(ctx, SetHeaterTemperature(heater, target)); err != nil {
		return err
	}
	return v.nav.Send(ctx, protocol.SetText(heaterField[heater], strconv.Itoa(int(target))))
}
