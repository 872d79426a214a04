package devserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	errUnknownEntry = errors.New("invalid video file")
	errVideoFile    = errors.New("video decoding is not supported; extract the frames into a folder")
	errNoImages     = errors.New("no images found in folder")
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".bmp": true, ".gif": true}
var videoExts = map[string]bool{".mp4": true, ".avi": true, ".mov": true, ".mkv": true}

// dataset is an image sequence stored as a folder of image files; frames are
// the files in name order.
type dataset struct {
	name  string
	dir   string
	files []string
}

// openDataset resolves name against the entries of dataDir. Only direct
// children are accepted so names cannot escape the data directory.
func openDataset(dataDir, name string) (*dataset, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Name() != name {
			continue
		}
		if !e.IsDir() {
			if videoExts[strings.ToLower(filepath.Ext(name))] {
				return nil, errVideoFile
			}
			return nil, errUnknownEntry
		}
		dir := filepath.Join(dataDir, name)
		files, err := listImages(dir)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: %s", errNoImages, name)
		}
		return &dataset{name: name, dir: dir, files: files}, nil
	}
	return nil, errUnknownEntry
}

func (d *dataset) total() int { return len(d.files) }

func (d *dataset) framePath(n int) (string, bool) {
	if n < 0 || n >= len(d.files) {
		return "", false
	}
	return filepath.Join(d.dir, d.files[n]), true
}

// listImages returns the image file names directly inside dir, sorted.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
