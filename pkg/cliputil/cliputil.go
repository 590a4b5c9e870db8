package cliputil

// CalculatePreviewBounds returns the playback window for previewing a clip
// that starts at start and lasts length seconds, widened by pad seconds on
// each side. The window is clamped to [0, videoDuration]; a non-positive
// videoDuration disables the upper clamp.
func CalculatePreviewBounds(start, length, pad, videoDuration float64) (from, to float64) {
	if pad < 0 {
		pad = 0
	}
	from = start - pad
	to = start + length + pad

	// Clamp to valid range
	if from < 0 {
		from = 0
	}
	if videoDuration > 0 && to > videoDuration {
		to = videoDuration
	}
	if to < from {
		to = from
	}
	return from, to
}
