package printer

import (
	"context"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/logging"
)

const (
	// GCodeRootName is the Moonraker file root holding printable files
	GCodeRootName = "gcodes"

	// DefaultGCodeRoot is the gcodes directory on a stock Neptune 4 image
	DefaultGCodeRoot = "/home/mks/printer_data/gcodes"
)

// File is one printable file with its preview, if the slicer embedded one.
type File struct {
	Filename  string
	Thumbnail string
	Modified  float64
	Size      int64
}

// HasThumbnail reports whether a preview image is available.
func (f File) HasThumbnail() bool {
	return f.Thumbnail != ""
}

// GCodeRoot returns the absolute path of the gcodes root.
func (c *Controller) GCodeRoot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gcodeRoot
}

// Files lists printable files, newest first. A metadata failure for one file
// yields an entry without thumbnail.
func (c *Controller) Files(ctx context.Context) ([]File, error) {
	roots, err := c.client.FileRoots(ctx)
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if root.Name == GCodeRootName && root.Path != "" {
			c.SetGCodeRoot(root.Path)
			break
		}
	}

	entries, err := c.client.ListFiles(ctx, GCodeRootName)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		file := File{Filename: entry.Path, Modified: entry.Modified, Size: entry.Size}

		md, err := c.client.Metadata(ctx, entry.Path)
		if err != nil {
			logging.Warn("Failed to read file metadata",
				zap.String("filename", entry.Path),
				zap.Error(err),
			)
		} else if len(md.Thumbnails) > 0 {
			// Thumbnail paths are relative to the file's directory.
			file.Thumbnail = path.Join(path.Dir(entry.Path), md.Thumbnails[0].RelativePath)
		}
		files = append(files, file)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Modified != files[j].Modified {
			return files[i].Modified > files[j].Modified
		}
		return files[i].Filename < files[j].Filename
	})
	return files, nil
}
