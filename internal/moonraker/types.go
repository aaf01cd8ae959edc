package moonraker

import "encoding/json"

// request is an outgoing JSON-RPC 2.0 call.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

// envelope is any incoming message: a response carries ID, a notification
// carries Method.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      *int64          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type response struct {
	Result   json.RawMessage
	Error    *RPCError
	applyErr error
}

// Notification methods sent by Moonraker
const (
	NotifyStatusUpdate     = "notify_status_update"
	NotifyKlippyReady      = "notify_klippy_ready"
	NotifyKlippyShutdown   = "notify_klippy_shutdown"
	NotifyKlippyDisconnect = "notify_klippy_disconnected"
	NotifyFileListChanged  = "notify_filelist_changed"
	NotifyGCodeResponse    = "notify_gcode_response"
)

// Klippy states reported by server.info
const (
	KlippyReady        = "ready"
	KlippyStartup      = "startup"
	KlippyShutdown     = "shutdown"
	KlippyError        = "error"
	KlippyDisconnected = "disconnected"
)

// ServerInfo is the subset of server.info the bridge uses.
type ServerInfo struct {
	KlippyConnected bool     `json:"klippy_connected"`
	KlippyState     string   `json:"klippy_state"`
	Components      []string `json:"components"`
	Warnings        []string `json:"warnings"`
	Version         string   `json:"moonraker_version"`
}

// Ready reports whether Klippy is connected and in the ready state.
func (s ServerInfo) Ready() bool {
	return s.KlippyConnected && s.KlippyState == KlippyReady
}

// subscribeResult is the result of printer.objects.subscribe.
type subscribeResult struct {
	EventTime float64        `json:"eventtime"`
	Status    map[string]any `json:"status"`
}

// FileRoot is one entry of server.files.roots.
type FileRoot struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Permissions string `json:"permissions"`
}

// File is one entry of server.files.list.
type File struct {
	Path     string  `json:"path"`
	Modified float64 `json:"modified"`
	Size     int64   `json:"size"`
}

// Thumbnail describes one embedded G-code preview.
type Thumbnail struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int64  `json:"size"`
	RelativePath string `json:"relative_path"`
}

// Metadata is the subset of server.files.metadata the bridge uses.
type Metadata struct {
	Filename      string      `json:"filename"`
	Slicer        string      `json:"slicer"`
	EstimatedTime float64     `json:"estimated_time"`
	FilamentTotal float64     `json:"filament_total"`
	LayerHeight   float64     `json:"layer_height"`
	ObjectHeight  float64     `json:"object_height"`
	Thumbnails    []Thumbnail `json:"thumbnails"`
}
