package cmd

import (
	"github.com/spf13/cobra"
)

// vowelCmd represents the vowel command
var vowelCmd = &cobra.Command{
	Use:   "vowel [flags] <audio-file>",
	Short: "Measure F1 and F2 of a sustained vowel",
	Long: `Measure the first two formants over a 50 ms window at the middle of a
sustained vowel recording. Formants that cannot be measured are null.

Examples:
  speech-analyzer vowel aa.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runVowel,
}

func init() {
	rootCmd.AddCommand(vowelCmd)

	vowelCmd.Flags().String("ffmpeg", "ffmpeg", "ffmpeg binary for containers other than wav and mp3")
}

func runVowel(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close(cmd.Context())

	return a.Vowel(cmd.Context(), args[0])
}
