package analysis

import "strconv"

// Header lists the per-frame columns written by Rows
func (fs *FeatureSet) Header() []string {
	return []string{
		"time", "rms", "loudness", "zcr", "spectral_centroid",
		"pitch_time", "pitch", "perturbation_time", "jitter", "shimmer",
	}
}

// Rows lays the tracks out one frame per row. Envelope and spectral
// tracks share the analysis frame grid while pitch and the perturbation
// tracks carry their own times. Shorter tracks leave trailing cells empty.
func (fs *FeatureSet) Rows() [][]string {
	n := max(fs.RMS.Len(), fs.ZCR.Len(), fs.SpectralCentroid.Len(), fs.Pitch.Len())
	rows := make([][]string, n)
	for i := range n {
		rows[i] = []string{
			cell(fs.RMS.Times, i),
			cell(fs.RMS.Values, i),
			cell(fs.Loudness.Values, i),
			cell(fs.ZCR.Values, i),
			cell(fs.SpectralCentroid.Values, i),
			cell(fs.Pitch.Times, i),
			cell(fs.Pitch.Values, i),
			cell(fs.Jitter.Times, i),
			cell(fs.Jitter.Values, i),
			cell(fs.Shimmer.Values, i),
		}
	}
	return rows
}

func cell(values []float64, i int) string {
	if i >= len(values) {
		return ""
	}
	return strconv.FormatFloat(values[i], 'f', 6, 64)
}
