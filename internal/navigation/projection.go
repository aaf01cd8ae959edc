package navigation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/muurk/neptune-screen/internal/protocol"
	"github.com/muurk/neptune-screen/internal/status"
)

// Picture of the pause button in its "running" state on the printing page
const picPrintRunning = 68

// Project maps a status snapshot to the field updates for the screen. It is
// pure: the same snapshot always yields the same commands in the same order.
// Fields whose source value is missing are skipped.
//
// Temperatures, the outer bed block and the toolhead position are always
// projected. The printing page block is added only while a print is running.
func Project(s status.Snapshot) []string {
	var cmds []string
	text := func(widget string, value string) {
		cmds = append(cmds, protocol.SetText(widget, value))
	}
	withInt := func(widget, suffix string, path ...string) {
		if v, ok := s.Float(path...); ok {
			text(widget, itoa(v)+suffix)
		}
	}

	withInt("nozzletemp", "°C", "extruder", "temperature")
	withInt("nozzletemp_t", "°C", "extruder", "target")
	withInt("bedtemp", "°C", "heater_bed", "temperature")
	withInt("bedtemp_t", "°C", "heater_bed", "target")

	outerBed := s.Has("heater_bed_outer", "temperature")
	if outerBed {
		withInt("out_bedtemp", "°C", "heater_bed_outer", "temperature")
		withInt("out_bedtemp_t", "°C", "heater_bed_outer", "target")
	}
	cmds = append(cmds,
		protocol.SetVisible("q5", outerBed),
		protocol.SetVisible("out_bedtemp", outerBed),
	)

	for i, widget := range []string{"x_pos", "y_pos", "z_pos"} {
		if v, ok := s.Index(i, "toolhead", "position"); ok {
			text(widget, itoa(v))
		}
	}

	if state, _ := s.String("print_stats", "state"); state != "printing" {
		return cmds
	}

	cmds = append(cmds,
		protocol.SetPic("p0", picPrintRunning),
		protocol.SetVisible("cp0", false),
	)
	if filename, ok := s.String("print_stats", "filename"); ok {
		text("t0", filename)
	}
	cmds = append(cmds, protocol.Call("printpause.cp0", "close"))

	if v, ok := s.Index(0, "gcode_move", "position"); ok {
		text("x_pos", "X["+itoa(v)+"]")
	}
	if v, ok := s.Index(1, "gcode_move", "position"); ok {
		text("y_pos", "Y["+itoa(v)+"]")
	}

	temp, okTemp := s.Float("extruder", "temperature")
	target, okTarget := s.Float("extruder", "target")
	if okTemp && okTarget {
		text("nozzletemp", itoa(temp)+"/"+itoa(target))
	}

	if v, ok := s.Float("fan", "speed"); ok {
		text("fanspeed", itoa(math.Round(v*100))+"%")
	}
	text("flow_speed", percent(s, "extrude_factor"))
	if v, ok := s.Index(2, "gcode_move", "position"); ok {
		text("zvalue", itoa(v))
	}
	text("printspeed", percent(s, "speed_factor"))

	if v, ok := s.Float("print_stats", "print_duration"); ok {
		text("printtime", FormatDuration(v))
	}
	if v, ok := s.Float("print_stats", "total_duration"); ok {
		text("t7", FormatDuration(v))
	}

	progress, _ := s.Float("display_status", "progress")
	text("printvalue", itoa(progress*100))

	// gcode_move.speed is mm/min.
	if v, ok := s.Float("gcode_move", "speed"); ok {
		text("pressure_val", itoa(v/60)+"mm/s")
	}

	return cmds
}

// percent renders a gcode_move factor (1.0 = 100%) as a percentage.
func percent(s status.Snapshot, factor string) string {
	v, ok := s.Float("gcode_move", factor)
	if !ok {
		v = 1
	}
	return itoa(math.Round(v*100)) + "%"
}

// FormatDuration renders seconds as H:MM:SS. Hours are not wrapped at a day.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// itoa truncates toward zero like the firmware expects for whole-number fields.
func itoa(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}
