package cmd

import (
	"github.com/spf13/cobra"
)

var (
	syllablesRender   bool
	syllablesFeatures bool
)

// syllablesCmd represents the syllables command
var syllablesCmd = &cobra.Command{
	Use:   "syllables [flags] <audio-file>",
	Short: "Transcribe and time a pa-ta-ka recording",
	Long: `Run a diadochokinetic (pa-ta-ka) session over a recording.

The recording is resampled to the analysis rate, transcribed, split into
syllables and each syllable is placed on the recording. The transcription
backend is configured under transcription.* (whisper.cpp server or OpenAI).

Examples:
  # Against a local whisper.cpp server
  speech-analyzer syllables --provider whisper --transcription-url http://localhost:8080 pataka.wav

  # Require 48 kHz input and embed a waveform image
  speech-analyzer syllables --required-rate 48000 --render pataka.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runSyllables,
}

func init() {
	rootCmd.AddCommand(syllablesCmd)

	syllablesCmd.Flags().BoolVar(&syllablesRender, "render", false,
		"include a base64 waveform png with syllable markers")
	syllablesCmd.Flags().BoolVar(&syllablesFeatures, "features", false,
		"include the full feature set in the report")
	syllablesCmd.Flags().String("provider", "none", "transcription provider (whisper, openai, none)")
	syllablesCmd.Flags().String("transcription-url", "", "transcription server or API base url")
	syllablesCmd.Flags().String("language", "ta", "transcription language hint")
	syllablesCmd.Flags().Int("required-rate", 0, "reject recordings at any other sample rate (0 accepts all)")
	syllablesCmd.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary for containers other than wav and mp3")
}

func runSyllables(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	return a.Syllables(cmd.Context(), args[0], syllablesRender, syllablesFeatures)
}
