package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio/pitch"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio/vad"
)

var analyzeLabels []string

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <audio-file>",
	Short: "Extract the acoustic feature set of a recording",
	Long: `Decode a recording, bring it to the analysis rate and print its feature set.

Pitch, envelope, spectral and voice activity stages run concurrently.
When labels are given they are placed on the midpoints of the first voiced
segments, or on a uniform grid when there are fewer segments than labels.

Examples:
  # JSON feature set
  speech-analyzer analyze recording.wav

  # Per-frame tracks as CSV
  speech-analyzer analyze -o csv --output-file tracks.csv recording.wav

  # Align known syllables
  speech-analyzer analyze --labels pa,ta,ka recording.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVar(&analyzeLabels, "labels", nil,
		"comma separated labels to align onto voiced segments")
	analyzeCmd.Flags().Float64("pitch-floor", pitch.DefaultFloor, "lowest pitch in Hz")
	analyzeCmd.Flags().Float64("pitch-ceiling", pitch.DefaultCeiling, "highest pitch in Hz")
	analyzeCmd.Flags().Int("vad-mode", vad.DefaultMode, "voice activity aggressiveness (0-3)")
	analyzeCmd.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary for containers other than wav and mp3")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	return a.Analyze(cmd.Context(), args[0], analyzeLabels)
}
