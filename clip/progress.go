package clip

import (
	"github.com/hashicorp/go-hclog"
)

// Progress is delivered to a Reporter once per launched clip, in
// completion order.
type Progress struct {
	Completed int // clips finished so far, including this one
	Total     int
	Message   string
	Clip      Descriptor
	Err       error // non-nil when this clip failed
}

// Reporter receives progress events. Calls are serialized by the dispatcher.
type Reporter interface {
	Report(Progress)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Progress)

// Report calls f(p).
func (f ReporterFunc) Report(p Progress) { f(p) }

// MultiReporter forwards each event to every non-nil reporter in order.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(p Progress) {
	for _, r := range m {
		if r != nil {
			r.Report(p)
		}
	}
}

// LogReporter writes one log line per finished clip at level. Failures
// carry the error; the dispatcher logs their details separately.
func LogReporter(logger hclog.Logger, level hclog.Level) Reporter {
	return ReporterFunc(func(p Progress) {
		if p.Err != nil {
			logger.Log(level, p.Message, "clip", p.Clip.Index, "output", p.Clip.OutputPath, "error", p.Err)
			return
		}
		logger.Log(level, p.Message, "clip", p.Clip.Index, "output", p.Clip.OutputPath)
	})
}
