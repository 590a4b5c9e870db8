// Package gpu infers the available H.264 encoders from vendor command-line
// tools. Nothing here talks to a driver; detection is text parsing only.
package gpu

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"runtime"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Kind distinguishes hardware encoders from the software fallback.
type Kind int

const (
	KindHardware Kind = iota
	KindSoftware
)

func (k Kind) String() string {
	if k == KindSoftware {
		return "software"
	}
	return "hardware"
}

// Vendors.
const (
	VendorNVIDIA = "NVIDIA"
	VendorAMD    = "AMD"
	VendorIntel  = "Intel"
	VendorCPU    = "CPU"
)

// Encoder identifiers per vendor.
const (
	EncoderNVENC    = "h264_nvenc"
	EncoderAMF      = "h264_amf"
	EncoderQSV      = "h264_qsv"
	EncoderSoftware = "libx264"
)

// SoftwareName is the display name of the always-present CPU entry.
const SoftwareName = "CPU (Software Encoding)"

// Capability is one usable encoder.
type Capability struct {
	Name    string // device name as reported by the vendor tool
	Vendor  string
	Encoder string
	Kind    Kind
}

// Software returns the CPU fallback capability.
func Software() Capability {
	return Capability{Name: SoftwareName, Vendor: VendorCPU, Encoder: EncoderSoftware, Kind: KindSoftware}
}

// Provider lists the encoders available on this machine.
type Provider interface {
	Capabilities(ctx context.Context) []Capability
}

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Output implements CommandRunner.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Detector implements Provider by querying nvidia-smi, and PowerShell on
// Windows or lspci elsewhere.
type Detector struct {
	Runner CommandRunner
	GOOS   string
	Logger hclog.Logger
}

// NewDetector returns a Detector for the current OS.
func NewDetector(logger hclog.Logger) *Detector {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Detector{Runner: ExecRunner{}, GOOS: runtime.GOOS, Logger: logger.Named("gpu")}
}

// Capabilities returns detected hardware encoders followed by the software
// fallback, which is always present. Tool failures just mean "not found".
func (d *Detector) Capabilities(ctx context.Context) []Capability {
	var caps []Capability

	if out, err := d.Runner.Output(ctx, "nvidia-smi", "-L"); err != nil {
		d.Logger.Debug("no NVIDIA GPU detected", "error", err)
	} else {
		caps = append(caps, ParseNvidiaSMI(out)...)
	}

	switch d.GOOS {
	case "windows":
		out, err := d.Runner.Output(ctx, "powershell", "-Command",
			"Get-WmiObject Win32_VideoController | Select-Object -ExpandProperty Name")
		if err != nil {
			d.Logger.Debug("video controller query failed", "error", err)
			break
		}
		caps = append(caps, ParseControllerNames(out)...)
	case "linux":
		out, err := d.Runner.Output(ctx, "lspci")
		if err != nil {
			d.Logger.Debug("lspci failed", "error", err)
			break
		}
		caps = append(caps, ParseLspci(out)...)
	}

	for _, c := range caps {
		d.Logger.Info("found GPU", "vendor", c.Vendor, "name", c.Name, "encoder", c.Encoder)
	}
	return append(caps, Software())
}

var nvidiaLine = regexp.MustCompile(`GPU \d+: (.+?) \(`)

// ParseNvidiaSMI extracts GPU names from `nvidia-smi -L` output, e.g.
// "GPU 0: NVIDIA GeForce RTX 3060 (UUID: GPU-...)".
func ParseNvidiaSMI(out []byte) []Capability {
	var caps []Capability
	for _, line := range lines(out) {
		m := nvidiaLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		caps = append(caps, Capability{Name: m[1], Vendor: VendorNVIDIA, Encoder: EncoderNVENC, Kind: KindHardware})
	}
	return caps
}

// ParseControllerNames classifies Win32_VideoController names, one per
// line. NVIDIA adapters are skipped since nvidia-smi already covers them.
func ParseControllerNames(out []byte) []Capability {
	var caps []Capability
	for _, name := range lines(out) {
		if c, ok := classify(name); ok {
			caps = append(caps, c)
		}
	}
	return caps
}

// ParseLspci classifies the VGA and 3D controller lines of lspci output.
func ParseLspci(out []byte) []Capability {
	var caps []Capability
	for _, line := range lines(out) {
		i := strings.Index(line, " controller: ")
		if i < 0 {
			continue
		}
		class := line[:i]
		if !strings.Contains(class, "VGA") && !strings.Contains(class, "3D") && !strings.Contains(class, "Display") {
			continue
		}
		name := strings.TrimSpace(line[i+len(" controller: "):])
		if c, ok := classify(name); ok {
			caps = append(caps, c)
		}
	}
	return caps
}

func classify(name string) (Capability, bool) {
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "AMD") || strings.Contains(upper, "ATI TECHNOLOGIES") || strings.Contains(upper, "RADEON"):
		return Capability{Name: name, Vendor: VendorAMD, Encoder: EncoderAMF, Kind: KindHardware}, true
	case strings.Contains(upper, "INTEL"):
		return Capability{Name: name, Vendor: VendorIntel, Encoder: EncoderQSV, Kind: KindHardware}, true
	}
	return Capability{}, false
}

func lines(out []byte) []string {
	var res []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			res = append(res, l)
		}
	}
	return res
}

var vendorRank = map[string]int{
	VendorNVIDIA: 0,
	VendorAMD:    1,
	VendorIntel:  2,
}

// Recommend picks the preferred capability: NVIDIA, then AMD, then Intel,
// then software. The first entry of a vendor wins.
func Recommend(caps []Capability) Capability {
	best, bestRank := Software(), len(vendorRank)
	for _, c := range caps {
		if c.Kind != KindHardware {
			continue
		}
		r, ok := vendorRank[c.Vendor]
		if ok && r < bestRank {
			best, bestRank = c, r
		}
	}
	return best
}
