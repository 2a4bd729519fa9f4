package waveform

// TestFrame synthesizes one frame of composite waveform carrying a
// horizontal luminance ramp. Sync pulses, porches and vertical blanking
// are placed at their proper levels, so the result is a valid input for
// scrambling round-trip checks.
func TestFrame(f *Framer, levels Levels) []float32 {
	frame := make([]float32, f.Timing.SamplesPerLine*f.LinesPerFrame)

	blanking := float32(levels.Blanking)
	syncTip := float32(levels.SyncTip)
	black := levels.Black
	white := levels.White

	for i := range frame {
		frame[i] = blanking
	}

	for li := 0; li < f.LinesPerFrame; li++ {
		line := f.Line(frame, li)
		all := line.All()
		for s := 0; s < f.Timing.SyncSamples; s++ {
			all[s] = syncTip
		}

		if !f.IsActiveLine(li) {
			continue
		}

		active := line.Active()
		n := len(active)
		for s := 0; s < n; s++ {
			lum := black + (white-black)*float64(s)/float64(n)
			active[s] = float32(lum)
		}
	}

	return frame
}

// BarsFrame synthesizes a frame of vertical bars alternating between
// black and white across the active region, eight bars per line.
func BarsFrame(f *Framer, levels Levels) []float32 {
	frame := TestFrame(f, levels)

	for li := 0; li < f.LinesPerFrame; li++ {
		if !f.IsActiveLine(li) {
			continue
		}
		active := f.Line(frame, li).Active()
		barWidth := len(active) / 8
		if barWidth == 0 {
			continue
		}
		for s := range active {
			if (s/barWidth)%2 == 0 {
				active[s] = float32(levels.White)
			} else {
				active[s] = float32(levels.Black)
			}
		}
	}

	return frame
}
