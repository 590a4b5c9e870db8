package clip

import "sort"

// SoftwareEncoder is the CPU encoder used when no hardware encoder applies
// or an identifier is not recognised.
const SoftwareEncoder = "libx264"

// Profile holds the encoder-specific ffmpeg options for one encoder id.
type Profile struct {
	Encoder      string
	Preset       string
	Tune         string // empty when the encoder takes no -tune
	QualityFlag  string // e.g. "quality" or "global_quality", without the dash
	QualityValue string
	Hardware     bool
}

var profiles = map[string]Profile{
	"h264_nvenc": {Encoder: "h264_nvenc", Preset: "p1", Tune: "hq", Hardware: true},
	"h264_amf":   {Encoder: "h264_amf", Preset: "medium", QualityFlag: "quality", QualityValue: "quality", Hardware: true},
	"h264_qsv":   {Encoder: "h264_qsv", Preset: "medium", QualityFlag: "global_quality", QualityValue: "23", Hardware: true},
	"libx264":    {Encoder: SoftwareEncoder, Preset: "medium"},
}

// LookupProfile returns the profile for id, if one exists.
func LookupProfile(id string) (Profile, bool) {
	p, ok := profiles[id]
	return p, ok
}

// ResolveProfile returns the profile for id, or the software profile when
// id is unknown. fallback reports whether the substitution happened.
func ResolveProfile(id string) (p Profile, fallback bool) {
	if p, ok := profiles[id]; ok {
		return p, false
	}
	return profiles[SoftwareEncoder], true
}

// KnownEncoders lists every encoder id with a profile, sorted.
func KnownEncoders() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
