package views

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/muurk/neptune-screen/internal/printer"
	"github.com/muurk/neptune-screen/internal/routes"
	"github.com/muurk/neptune-screen/internal/status"
)

// fakeNav records navigation and outbound commands in one ordered log.
type fakeNav struct {
	log []string
}

func (n *fakeNav) Navigate(_ context.Context, page int, record bool) error {
	n.log = append(n.log, fmt.Sprintf("page %d record=%v", page, record))
	return nil
}

func (n *fakeNav) Back(context.Context) error {
	n.log = append(n.log, "back")
	return nil
}

func (n *fakeNav) Send(_ context.Context, commands ...string) error {
	n.log = append(n.log, commands...)
	return nil
}

type fakePrinter struct {
	tree     status.Tree
	gcode    []string
	gcodeErr map[string]error
	calls    []string
	files    []printer.File
	filesErr error
	printing bool
}

func (p *fakePrinter) Status() status.Snapshot { return status.NewSnapshot(p.tree) }
func (p *fakePrinter) Printing() bool          { return p.printing }

func (p *fakePrinter) GCode(_ context.Context, script string) error {
	p.gcode = append(p.gcode, script)
	return p.gcodeErr[script]
}

func (p *fakePrinter) StartPrint(_ context.Context, filename string) error {
	p.calls = append(p.calls, "start:"+filename)
	return nil
}

func (p *fakePrinter) TogglePause(context.Context) error {
	p.calls = append(p.calls, "pause")
	return nil
}

func (p *fakePrinter) CancelPrint(context.Context) error {
	p.calls = append(p.calls, "cancel")
	return nil
}

func (p *fakePrinter) EmergencyStop(context.Context) error {
	p.calls = append(p.calls, "estop")
	return nil
}

func (p *fakePrinter) Files(context.Context) ([]printer.File, error) {
	return p.files, p.filesErr
}

func newTestSet() (*Set, *fakeNav, *fakePrinter) {
	nav := &fakeNav{}
	p := &fakePrinter{tree: status.Tree{}}
	return New(nav, p, Options{}), nav, p
}

func TestDefaultRoutesResolveToOperations(t *testing.T) {
	set, _, _ := newTestSet()
	table, err := routes.DefaultTable()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := routes.NewRouter(table, set.Operations()); err != nil {
		t.Fatalf("default routing table does not match the views: %v", err)
	}
}

func TestMaterialPreset(t *testing.T) {
	set, nav, p := newTestSet()

	if err := set.PrepareTemp.Material(context.Background(), routes.Args{"pla"}); err != nil {
		t.Fatalf("Material(pla) error = %v", err)
	}

	wantGCode := []string{
		"SET_HEATER_TEMPERATURE heater=extruder target=205",
		"SET_HEATER_TEMPERATURE heater=heater_bed target=60",
	}
	if !reflect.DeepEqual(p.gcode, wantGCode) {
		t.Errorf("gcode = %q, want %q", p.gcode, wantGCode)
	}
	wantLog := []string{`nozzle.txt="205"`, `bed.txt="60"`}
	if !reflect.DeepEqual(nav.log, wantLog) {
		t.Errorf("display = %q, want %q", nav.log, wantLog)
	}
}

func TestUnknownMaterial(t *testing.T) {
	set, nav, p := newTestSet()

	err := set.PrepareTemp.Material(context.Background(), routes.Args{"nylon"})
	if !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("Material(nylon) error = %v, want ErrUnknownMaterial", err)
	}
	if len(p.gcode) != 0 || len(nav.log) != 0 {
		t.Errorf("unknown material had side effects: gcode=%q display=%q", p.gcode, nav.log)
	}
}

func TestCustomPresets(t *testing.T) {
	nav := &fakeNav{}
	p := &fakePrinter{tree: status.Tree{}}
	set := New(nav, p, Options{Presets: map[string]Preset{"asa": {Extruder: 250, Bed: 95}}})

	if err := set.PrepareTemp.Material(context.Background(), routes.Args{"asa"}); err != nil {
		t.Fatalf("Material(asa) error = %v", err)
	}
	if err := set.PrepareTemp.Material(context.Background(), routes.Args{"pla"}); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("configured presets should replace the defaults, got %v", err)
	}
	if got := set.PrepareTemp.Materials(); !reflect.DeepEqual(got, []string{"asa"}) {
		t.Errorf("Materials() = %v", got)
	}
}

func TestTemperatureShow(t *testing.T) {
	set, nav, p := newTestSet()
	p.tree = status.Tree{
		"extruder":   map[string]any{"target": 210.0},
		"heater_bed": map[string]any{"target": 65.0},
	}

	if err := set.PrepareTemp.Show(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"page 6 record=true", `nozzle.txt="210"`, `bed.txt="65"`}
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display = %q, want %q", nav.log, want)
	}
}

func TestTextTargets(t *testing.T) {
	set, nav, p := newTestSet()
	ops := set.Operations()

	if err := ops[routes.OpKey{View: "PrepareTemp", Operation: "set_outerbed_target"}](context.Background(), routes.Args{90}); err != nil {
		t.Fatal(err)
	}
	if p.gcode[0] != "SET_HEATER_TEMPERATURE heater=heater_bed_outer target=90" {
		t.Errorf("gcode = %q", p.gcode[0])
	}
	if nav.log[0] != `out_bed.txt="90"` {
		t.Errorf("display = %q", nav.log[0])
	}

	if err := set.PrepareTemp.BedOff(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.gcode[1] != "SET_HEATER_TEMPERATURE heater=heater_bed target=0" {
		t.Errorf("gcode = %q", p.gcode[1])
	}
}

func TestMoveAxisIsRelativeAndRestoresAbsolute(t *testing.T) {
	tests := []struct {
		name  string
		width routes.Args
		args  routes.Args
		want  []string
	}{
		{"default step", nil, routes.Args{"+", "x"}, []string{"G91", "G1 X1", "G90"}},
		{"tenth step down", routes.Args{10, 0.1}, routes.Args{"-", "z"}, []string{"G91", "G1 Z-0.1", "G90"}},
		{"ten mm back", routes.Args{12, 10}, routes.Args{"-", "y"}, []string{"G91", "G1 Y-10", "G90"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, _, p := newTestSet()
			if tt.width != nil {
				if err := set.PrepareMove.MoveWidth(context.Background(), tt.width); err != nil {
					t.Fatal(err)
				}
			}
			if err := set.PrepareMove.MoveAxis(context.Background(), tt.args); err != nil {
				t.Fatalf("MoveAxis() error = %v", err)
			}
			if !reflect.DeepEqual(p.gcode, tt.want) {
				t.Errorf("gcode = %q, want %q", p.gcode, tt.want)
			}
		})
	}
}

func TestMoveAxisRestoresAbsoluteAfterFailure(t *testing.T) {
	moveErr := errors.New("Move out of range: 0.000 -10.000 0.000 [0.000]")
	tests := []struct {
		name   string
		failOn string
		want   []string
	}{
		{"move fails", "G1 Y-1", []string{"G91", "G1 Y-1", "G90"}},
		{"relative mode fails", "G91", []string{"G91", "G90"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, _, p := newTestSet()
			p.gcodeErr = map[string]error{tt.failOn: moveErr}

			err := set.PrepareMove.MoveAxis(context.Background(), routes.Args{"-", "y"})
			if !errors.Is(err, moveErr) {
				t.Errorf("MoveAxis() error = %v, want %v", err, moveErr)
			}
			if !reflect.DeepEqual(p.gcode, tt.want) {
				t.Errorf("gcode = %q, want %q", p.gcode, tt.want)
			}
		})
	}
}

func TestMoveAxisReportsRestoreFailure(t *testing.T) {
	set, _, p := newTestSet()
	restoreErr := errors.New("klippy shutdown")
	p.gcodeErr = map[string]error{"G90": restoreErr}

	err := set.PrepareMove.MoveAxis(context.Background(), routes.Args{"+", "z"})
	if !errors.Is(err, restoreErr) {
		t.Errorf("MoveAxis() error = %v, want %v", err, restoreErr)
	}
}

func TestMoveAxisRejectsBadArgs(t *testing.T) {
	set, _, p := newTestSet()
	for _, args := range []routes.Args{{"*", "x"}, {"+", "e"}, {"+"}, {1, "x"}} {
		if err := set.PrepareMove.MoveAxis(context.Background(), args); !errors.Is(err, routes.ErrInvalidArgument) {
			t.Errorf("MoveAxis(%v) error = %v, want ErrInvalidArgument", args, err)
		}
	}
	if len(p.gcode) != 0 {
		t.Errorf("rejected moves sent gcode: %q", p.gcode)
	}
}

func TestMoveShowAndWidth(t *testing.T) {
	set, nav, _ := newTestSet()

	if err := set.PrepareMove.MoveWidth(context.Background(), routes.Args{12, 10}); err != nil {
		t.Fatal(err)
	}
	if err := set.PrepareMove.Show(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"p0.pic=12", "page 8 record=true", "p0.pic=11"}
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display = %q, want %q", nav.log, want)
	}
	if set.PrepareMove.Distance() != 1 {
		t.Errorf("Distance() after Show = %v, want 1", set.PrepareMove.Distance())
	}
}

func TestMoveHome(t *testing.T) {
	set, _, p := newTestSet()
	_ = set.PrepareMove.MoveHome(context.Background(), nil)
	_ = set.PrepareMove.MoveHome(context.Background(), routes.Args{"z"})

	want := []string{"G28", "G28 Z"}
	if !reflect.DeepEqual(p.gcode, want) {
		t.Errorf("gcode = %q, want %q", p.gcode, want)
	}
}

func TestToggleFan(t *testing.T) {
	tests := []struct {
		name string
		tree status.Tree
		want string
	}{
		{"off turns on", status.Tree{"fan": map[string]any{"speed": 0.0}}, "M106 S255"},
		{"unknown turns on", status.Tree{}, "M106 S255"},
		{"on turns off", status.Tree{"fan": map[string]any{"speed": 0.4}}, "M106 S0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, _, p := newTestSet()
			p.tree = tt.tree
			if err := set.PrepareMove.ToggleFan(context.Background()); err != nil {
				t.Fatal(err)
			}
			if p.gcode[0] != tt.want {
				t.Errorf("gcode = %q, want %q", p.gcode[0], tt.want)
			}
		})
	}
}

func TestExtruderGuard(t *testing.T) {
	tests := []struct {
		name      string
		temp      any
		wantGCode []string
		wantNav   []string
	}{
		{"cold nozzle shows warning", 25.0, nil, []string{"page 37 record=false"}},
		{"unknown temperature shows warning", nil, nil, []string{"page 37 record=false"}},
		{"hot nozzle extrudes", 200.0, []string{"M83\nG1 E50 F150"}, nil},
		{"at threshold extrudes", 170.0, []string{"M83\nG1 E50 F150"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, nav, p := newTestSet()
			if tt.temp != nil {
				p.tree = status.Tree{"extruder": map[string]any{"temperature": tt.temp}}
			}
			if err := set.PrepareExtruder.Move(context.Background(), routes.Args{"+"}); err != nil {
				t.Fatalf("Move() error = %v", err)
			}
			if !reflect.DeepEqual(p.gcode, tt.wantGCode) {
				t.Errorf("gcode = %q, want %q", p.gcode, tt.wantGCode)
			}
			if !reflect.DeepEqual(nav.log, tt.wantNav) {
				t.Errorf("display = %q, want %q", nav.log, tt.wantNav)
			}
		})
	}
}

func TestExtruderRetractWithCustomValues(t *testing.T) {
	set, nav, p := newTestSet()
	p.tree = status.Tree{"extruder": map[string]any{"temperature": 215.0}}

	if err := set.PrepareExtruder.SetWidth(context.Background(), routes.Args{20}); err != nil {
		t.Fatal(err)
	}
	if err := set.PrepareExtruder.SetSpeed(context.Background(), routes.Args{300}); err != nil {
		t.Fatal(err)
	}
	if err := set.PrepareExtruder.Move(context.Background(), routes.Args{"-"}); err != nil {
		t.Fatal(err)
	}

	if p.gcode[0] != "M83\nG1 E-20 F300" {
		t.Errorf("gcode = %q", p.gcode[0])
	}
	want := []string{`filamentlength.txt="20"`, `filamentspeed.txt="300"`}
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display = %q, want %q", nav.log, want)
	}
	if err := set.PrepareExtruder.SetWidth(context.Background(), routes.Args{0}); !errors.Is(err, routes.ErrInvalidArgument) {
		t.Errorf("SetWidth(0) error = %v, want ErrInvalidArgument", err)
	}
}

func TestExtruderConfirmAndCancel(t *testing.T) {
	set, nav, p := newTestSet()

	if err := set.PrepareExtruder.ConfirmTemp(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := set.PrepareExtruder.CancelTemp(context.Background()); err != nil {
		t.Fatal(err)
	}

	if p.gcode[0] != "SET_HEATER_TEMPERATURE heater=extruder target=170" {
		t.Errorf("gcode = %q", p.gcode[0])
	}
	want := []string{"page 9 record=false", "page 9 record=false"}
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display = %q, want %q", nav.log, want)
	}
}

func TestHome(t *testing.T) {
	set, nav, p := newTestSet()
	_ = set.Home(context.Background())
	p.printing = true
	_ = set.Home(context.Background())

	want := []string{"page 1 record=true", "page 19 record=false"}
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display = %q, want %q", nav.log, want)
	}
}

func TestNavOperations(t *testing.T) {
	set, nav, _ := newTestSet()
	ops := set.Operations()

	_ = ops[routes.OpKey{View: "nav", Operation: "page"}](context.Background(), routes.Args{35})
	_ = ops[routes.OpKey{View: "Settings", Operation: "back"}](context.Background(), nil)
	_ = ops[routes.OpKey{View: "Prepare", Operation: "show"}](context.Background(), nil)

	want := []string{"page 35 record=true", "back", "page 109 record=false"}
	if !reflect.DeepEqual(nav.log, want) {
		t.Errorf("display = %q, want %q", nav.log, want)
	}

	if err := ops[routes.OpKey{View: "nav", Operation: "page"}](context.Background(), routes.Args{"x"}); !errors.Is(err, routes.ErrInvalidArgument) {
		t.Errorf("nav.page(x) error = %v, want ErrInvalidArgument", err)
	}
}

func TestLevelShowIsNoop(t *testing.T) {
	set, nav, p := newTestSet()

	op := set.Operations()[routes.OpKey{View: "Level", Operation: "show"}]
	if err := op(context.Background(), nil); err != nil {
		t.Errorf("Level.show error = %v, want nil", err)
	}
	if len(nav.log) != 0 || len(p.gcode) != 0 {
		t.Errorf("Level.show sent display %q gcode %q, want nothing", nav.log, p.gcode)
	}
}
