package pose

// GapReport summarizes sampling gaps wider than a threshold. Gaps never
// reject interpolation; they are surfaced through the run summary so an
// operator can judge whether frames in the gap should be trusted.
type GapReport struct {
	Threshold float64 // Seconds; gaps strictly wider than this are counted
	Count     int
	Widest    float64 // Seconds; zero when Count is zero
	WidestAt  float64 // Timestamp of the sample opening the widest gap
}

// Gaps scans consecutive sample pairs of a finalized track.
func (t *Track) Gaps(threshold float64) (GapReport, error) {
	if !t.finalized {
		return GapReport{}, ErrNotReady
	}

	report := GapReport{Threshold: threshold}
	for i := 1; i < len(t.samples); i++ {
		gap := t.samples[i].Timestamp - t.samples[i-1].Timestamp
		if gap <= threshold {
			continue
		}
		report.Count++
		if gap > report.Widest {
			report.Widest = gap
			report.WidestAt = t.samples[i-1].Timestamp
		}
	}
	return report, nil
}
