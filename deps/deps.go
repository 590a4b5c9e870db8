package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
	NvidiaInstallURL = "https://www.nvidia.com/Download/index.aspx"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	Binary     string
	InstallURL string
}

func (e *DependencyError) Error() string {
	if e.Binary != "" && e.Binary != e.Name {
		return fmt.Sprintf("%s not found at %q. Install from: %s", e.Name, e.Binary, e.InstallURL)
	}
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Dependency describes one external binary.
type Dependency struct {
	Name       string
	Binary     string // name on PATH or explicit path
	InstallURL string
	Required   bool // cut cannot run without it
}

// Check reports whether the dependency resolves, returning its full path.
func (d Dependency) Check() (string, error) {
	path, err := exec.LookPath(d.Binary)
	if err != nil {
		return "", &DependencyError{Name: d.Name, Binary: d.Binary, InstallURL: d.InstallURL}
	}
	return path, nil
}

// CheckFfmpeg checks that the ffmpeg binary is available
func CheckFfmpeg(binary string) error {
	_, err := Dependency{Name: "ffmpeg", Binary: orDefault(binary, "ffmpeg"), InstallURL: FfmpegInstallURL}.Check()
	return err
}

// CheckFfprobe checks that the ffprobe binary is available
func CheckFfprobe(binary string) error {
	_, err := Dependency{Name: "ffprobe", Binary: orDefault(binary, "ffprobe"), InstallURL: FfmpegInstallURL}.Check()
	return err
}

// CheckMpv checks that mpv is available
func CheckMpv(binary string) error {
	_, err := Dependency{Name: "mpv", Binary: orDefault(binary, "mpv"), InstallURL: MpvInstallURL}.Check()
	return err
}

// All lists every dependency doctor reports on. Paths come from the
// configured binaries.
func All(ffmpeg, ffprobe, mpv string) []Dependency {
	return []Dependency{
		{Name: "ffmpeg", Binary: orDefault(ffmpeg, "ffmpeg"), InstallURL: FfmpegInstallURL, Required: true},
		{Name: "ffprobe", Binary: orDefault(ffprobe, "ffprobe"), InstallURL: FfmpegInstallURL, Required: true},
		{Name: "mpv", Binary: orDefault(mpv, "mpv"), InstallURL: MpvInstallURL},
		{Name: "nvidia-smi", Binary: "nvidia-smi", InstallURL: NvidiaInstallURL},
	}
}

// CheckRequired checks ffmpeg and ffprobe and returns a slice of errors for missing ones
func CheckRequired(ffmpeg, ffprobe string) []error {
	var errors []error

	if err := CheckFfmpeg(ffmpeg); err != nil {
		errors = append(errors, err)
	}

	if err := CheckFfprobe(ffprobe); err != nil {
		errors = append(errors, err)
	}

	return errors
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
