package printer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muurk/neptune-screen/internal/moonraker"
	"github.com/muurk/neptune-screen/internal/status"
)

type fakeClient struct {
	mu         sync.Mutex
	handler    moonraker.NotificationHandler
	connected  bool
	connectErr error
	info       moonraker.ServerInfo
	infoErr    error
	subscribed map[string]any
	subCalls   int
	gcode      []string
	calls      []string
	roots      []moonraker.FileRoot
	files      []moonraker.File
	metadata   map[string]moonraker.Metadata
	done       chan struct{}
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		info:     moonraker.ServerInfo{KlippyConnected: true, KlippyState: moonraker.KlippyReady},
		metadata: map[string]moonraker.Metadata{},
		done:     make(chan struct{}),
		subscribed: map[string]any{
			"print_stats": map[string]any{"state": "standby"},
			"extruder":    map[string]any{"temperature": 21.0, "target": 0.0},
		},
	}
}

func (f *fakeClient) OnNotification(h moonraker.NotificationHandler) { f.handler = h }

func (f *fakeClient) Connect(context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) Done() <-chan struct{} { return f.done }
func (f *fakeClient) Close() error          { return nil }

func (f *fakeClient) ServerInfo(context.Context) (moonraker.ServerInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info, f.infoErr
}

func (f *fakeClient) Subscribe(_ context.Context, _ map[string][]string, install func(map[string]any)) (map[string]any, error) {
	f.mu.Lock()
	f.subCalls++
	out := make(map[string]any, len(f.subscribed))
	for k, v := range f.subscribed {
		out[k] = v
	}
	f.mu.Unlock()
	if install != nil {
		install(out)
	}
	return out, nil
}

func (f *fakeClient) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeClient) GCode(_ context.Context, script string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gcode = append(f.gcode, script)
	return nil
}

func (f *fakeClient) StartPrint(_ context.Context, filename string) error {
	return f.record("start:" + filename)
}
func (f *fakeClient) PausePrint(context.Context) error    { return f.record("pause") }
func (f *fakeClient) ResumePrint(context.Context) error   { return f.record("resume") }
func (f *fakeClient) CancelPrint(context.Context) error   { return f.record("cancel") }
func (f *fakeClient) EmergencyStop(context.Context) error { return f.record("estop") }

func (f *fakeClient) FileRoots(context.Context) ([]moonraker.FileRoot, error) {
	return f.roots, nil
}

func (f *fakeClient) ListFiles(context.Context, string) ([]moonraker.File, error) {
	return f.files, nil
}

func (f *fakeClient) Metadata(_ context.Context, filename string) (moonraker.Metadata, error) {
	md, ok := f.metadata[filename]
	if !ok {
		return moonraker.Metadata{}, &moonraker.RPCError{Code: 404, Message: "no metadata"}
	}
	return md, nil
}

func (f *fakeClient) notify(t *testing.T, method string, params ...any) {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}
	f.handler(method, raw)
}

func TestStartSubscribesWhenReady(t *testing.T) {
	client := newFakeClient()
	store := status.NewStore()
	c := New(client, store)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if store.Empty() {
		t.Fatal("store should hold the subscription snapshot")
	}
	if v, _ := c.Status().Float("extruder", "temperature"); v != 21 {
		t.Errorf("extruder.temperature = %v, want 21", v)
	}
	if !c.Ready(context.Background()) {
		t.Error("Ready() = false, want true")
	}
	if client.subCalls != 1 {
		t.Errorf("subscribe calls = %d, want 1", client.subCalls)
	}
}

func TestStartConnectError(t *testing.T) {
	client := newFakeClient()
	client.connectErr = errors.New("refused")
	c := New(client, status.NewStore())
	if err := c.Start(context.Background()); err == nil {
		t.Error("Start() should fail when the connection fails")
	}
}

func TestReadyWaitsForKlippy(t *testing.T) {
	client := newFakeClient()
	client.info = moonraker.ServerInfo{KlippyConnected: true, KlippyState: moonraker.KlippyStartup}
	store := status.NewStore()
	c := New(client, store)

	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Ready(context.Background()) {
		t.Error("Ready() = true while Klippy is starting")
	}
	if c.KlippyState() != moonraker.KlippyStartup {
		t.Errorf("KlippyState() = %q", c.KlippyState())
	}

	client.mu.Lock()
	client.info.KlippyState = moonraker.KlippyReady
	client.mu.Unlock()

	if !c.Ready(context.Background()) {
		t.Error("Ready() = false after Klippy became ready")
	}
	if store.Empty() {
		t.Error("Ready() should subscribe once Klippy is ready")
	}
}

func TestReadyNotConnected(t *testing.T) {
	c := New(newFakeClient(), status.NewStore())
	if c.Ready(context.Background()) {
		t.Error("Ready() = true before Start")
	}
}

func TestStatusUpdatesMergeInOrder(t *testing.T) {
	client := newFakeClient()
	store := status.NewStore()
	c := New(client, store)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	client.notify(t, moonraker.NotifyStatusUpdate, map[string]any{"extruder": map[string]any{"target": 205.0}}, 10.0)
	client.notify(t, moonraker.NotifyStatusUpdate, map[string]any{"extruder": map[string]any{"temperature": 150.0}}, 11.0)
	client.notify(t, moonraker.NotifyStatusUpdate, map[string]any{"extruder": map[string]any{"temperature": 180.0}}, 12.0)

	snap := c.Status()
	if v, _ := snap.Float("extruder", "target"); v != 205 {
		t.Errorf("target = %v, want 205", v)
	}
	if v, _ := snap.Float("extruder", "temperature"); v != 180 {
		t.Errorf("temperature = %v, want 180 (last write wins)", v)
	}
	if state, _ := snap.String("print_stats", "state"); state != "standby" {
		t.Errorf("unrelated key print_stats.state = %q, want standby", state)
	}
}

func TestMalformedStatusUpdateIgnored(t *testing.T) {
	client := newFakeClient()
	store := status.NewStore()
	c := New(client, store)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := c.Status().Tree()

	client.handler(moonraker.NotifyStatusUpdate, json.RawMessage(`{"not":"a list"}`))
	client.handler(moonraker.NotifyStatusUpdate, json.RawMessage(`[]`))

	if v, _ := c.Status().Float("extruder", "temperature"); v != before["extruder"].(map[string]any)["temperature"] {
		t.Errorf("status changed after malformed updates")
	}
}

func TestKlippyReadyResubscribes(t *testing.T) {
	client := newFakeClient()
	c := New(client, status.NewStore())
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	client.notify(t, moonraker.NotifyKlippyShutdown)
	if c.KlippyState() != moonraker.KlippyShutdown {
		t.Errorf("KlippyState() = %q, want shutdown", c.KlippyState())
	}

	client.notify(t, moonraker.NotifyKlippyReady)
	deadline := time.Now().Add(2 * time.Second)
	for {
		client.mu.Lock()
		n := client.subCalls
		client.mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscribe calls = %d, want 2", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTogglePause(t *testing.T) {
	client := newFakeClient()
	c := New(client, status.NewStore())
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	client.notify(t, moonraker.NotifyStatusUpdate, map[string]any{"print_stats": map[string]any{"state": "printing"}}, 1.0)
	if !c.Printing() {
		t.Error("Printing() = false while printing")
	}
	_ = c.TogglePause(context.Background())

	client.notify(t, moonraker.NotifyStatusUpdate, map[string]any{"print_stats": map[string]any{"state": "paused"}}, 2.0)
	_ = c.TogglePause(context.Background())

	want := []string{"pause", "resume"}
	if len(client.calls) != 2 || client.calls[0] != want[0] || client.calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", client.calls, want)
	}
}

func TestFiles(t *testing.T) {
	client := newFakeClient()
	client.roots = []moonraker.FileRoot{
		{Name: "config", Path: "/home/pi/printer_data/config"},
		{Name: "gcodes", Path: "/home/pi/printer_data/gcodes"},
	}
	client.files = []moonraker.File{
		{Path: "old.gcode", Modified: 100},
		{Path: "parts/new.gcode", Modified: 300},
		{Path: "mid.gcode", Modified: 200},
	}
	client.metadata["parts/new.gcode"] = moonraker.Metadata{
		Thumbnails: []moonraker.Thumbnail{{Width: 32, Height: 32, RelativePath: ".thumbs/new-32x32.png"}},
	}
	client.metadata["old.gcode"] = moonraker.Metadata{}
	c := New(client, status.NewStore())

	files, err := c.Files(context.Background())
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}

	wantOrder := []string{"parts/new.gcode", "mid.gcode", "old.gcode"}
	if len(files) != len(wantOrder) {
		t.Fatalf("Files() returned %d entries, want %d", len(files), len(wantOrder))
	}
	for i, name := range wantOrder {
		if files[i].Filename != name {
			t.Errorf("files[%d] = %q, want %q", i, files[i].Filename, name)
		}
	}
	if files[0].Thumbnail != "parts/.thumbs/new-32x32.png" {
		t.Errorf("thumbnail = %q", files[0].Thumbnail)
	}
	if files[1].HasThumbnail() {
		t.Error("metadata failure should yield an entry without thumbnail")
	}
	if c.GCodeRoot() != "/home/pi/printer_data/gcodes" {
		t.Errorf("GCodeRoot() = %q", c.GCodeRoot())
	}
}
