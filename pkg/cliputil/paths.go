// Package cliputil names clip output directories and files.
package cliputil

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// minIndexWidth is the minimum zero-padded width of a clip index (clip_001.mp4).
const minIndexWidth = 3

// SanitizeTitle replaces spaces with underscores and removes filesystem-unsafe characters.
func SanitizeTitle(title string) string {
	name := strings.TrimSpace(title)
	name = strings.ReplaceAll(name, " ", "_")
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "")
	}
	return name
}

// IndexWidth returns the zero-padding width used for a plan of total clips.
// It is at least 3 and grows so that lexical order always equals plan order.
func IndexWidth(total int) int {
	w := len(strconv.Itoa(total))
	if w < minIndexWidth {
		return minIndexWidth
	}
	return w
}

// ClipFileName returns the file name of the clip at the 1-based index,
// e.g. clip_007.mp4.
func ClipFileName(index, total int) string {
	return fmt.Sprintf("clip_%0*d.mp4", IndexWidth(total), index)
}

// ExistingClips returns the clip files already present in outputDir.
// A missing directory has none.
func ExistingClips(outputDir string) []string {
	matches, _ := filepath.Glob(filepath.Join(outputDir, "clip_*.mp4"))
	return matches
}

// ClipPath returns the full path for a clip inside outputDir.
func ClipPath(outputDir string, index, total int) string {
	return filepath.Join(outputDir, ClipFileName(index, total))
}

// GetOutputDir returns the default clips directory for a video.
// For example, "/path/to/match.mp4" returns "/path/to/match-clips".
func GetOutputDir(videoPath string) string {
	dir := filepath.Dir(videoPath)
	base := filepath.Base(videoPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+"-clips")
}

// ResolveOutputDir returns outputRoot/title when a title is given, or
// outputRoot itself. An empty outputRoot falls back to GetOutputDir.
func ResolveOutputDir(videoPath, outputRoot, title string) string {
	if outputRoot == "" {
		outputRoot = GetOutputDir(videoPath)
	}
	if t := SanitizeTitle(title); t != "" {
		return filepath.Join(outputRoot, t)
	}
	return outputRoot
}
