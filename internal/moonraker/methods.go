package moonraker

import (
	"context"
	"encoding/json"
	"fmt"
)

// ServerInfo queries server.info.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	if err := c.Call(ctx, "server.info", nil, &info); err != nil {
		return ServerInfo{}, err
	}
	return info, nil
}

// Subscribe subscribes to printer objects and returns their current status.
// A nil attribute list subscribes to every attribute of that object.
//
// A non-nil install receives the status on the read goroutine before any
// notification that follows the response, so a store fed by the notification
// handler never sees the snapshot land on top of a newer delta.
func (c *Client) Subscribe(ctx context.Context, objects map[string][]string, install func(map[string]any)) (map[string]any, error) {
	params := map[string]any{"objects": objects}
	var status map[string]any
	apply := func(raw json.RawMessage) error {
		var res subscribeResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return err
		}
		if res.Status == nil {
			res.Status = map[string]any{}
		}
		status = res.Status
		if install != nil {
			install(status)
		}
		return nil
	}
	if err := c.call(ctx, "printer.objects.subscribe", params, nil, apply); err != nil {
		return nil, err
	}
	return status, nil
}

// GCode runs a G-code script.
func (c *Client) GCode(ctx context.Context, script string) error {
	return c.Call(ctx, "printer.gcode.script", map[string]string{"script": script}, nil)
}

// StartPrint starts printing filename, relative to the gcodes root.
func (c *Client) StartPrint(ctx context.Context, filename string) error {
	return c.Call(ctx, "printer.print.start", map[string]string{"filename": filename}, nil)
}

// PausePrint pauses the current print.
func (c *Client) PausePrint(ctx context.Context) error {
	return c.Call(ctx, "printer.print.pause", nil, nil)
}

// ResumePrint resumes a paused print.
func (c *Client) ResumePrint(ctx context.Context) error {
	return c.Call(ctx, "printer.print.resume", nil, nil)
}

// CancelPrint cancels the current print.
func (c *Client) CancelPrint(ctx context.Context) error {
	return c.Call(ctx, "printer.print.cancel", nil, nil)
}

// EmergencyStop halts the printer immediately.
func (c *Client) EmergencyStop(ctx context.Context) error {
	return c.Call(ctx, "printer.emergency_stop", nil, nil)
}

// FileRoots lists the registered file roots.
func (c *Client) FileRoots(ctx context.Context) ([]FileRoot, error) {
	var roots []FileRoot
	if err := c.Call(ctx, "server.files.roots", nil, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// ListFiles lists the files under root.
func (c *Client) ListFiles(ctx context.Context, root string) ([]File, error) {
	var files []File
	if err := c.Call(ctx, "server.files.list", map[string]string{"root": root}, &files); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}
	return files, nil
}

// Metadata returns the slicer metadata of a G-code file.
func (c *Client) Metadata(ctx context.Context, filename string) (Metadata, error) {
	var md Metadata
	if err := c.Call(ctx, "server.files.metadata", map[string]string{"filename": filename}, &md); err != nil {
		return Metadata{}, err
	}
	return md, nil
}
