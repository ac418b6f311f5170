package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/speech-analyzer/configs"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration, validates it and displays the
effective values after defaults, config file and SPEECH_ANALYZER_*
environment variables are merged.

Examples:
  # Test with default config file
  speech-analyzer config-test

  # Test with specific config file
  speech-analyzer --config /path/to/config.yaml config-test`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("SPEECH ANALYZER CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	config, err := configs.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Log Format", config.LogFormat)

	printSection("AUDIO CONFIGURATION")
	printKeyValue("Target Sample Rate", fmt.Sprintf("%d Hz", config.Audio.TargetSampleRate))
	printKeyValue("Required Input Rate", rateOrAny(config.Audio.RequiredInputRate))
	printKeyValue("FFmpeg Path", config.Audio.FFmpegPath)

	printSection("ANALYSIS CONFIGURATION")
	printKeyValue("Pitch Band", fmt.Sprintf("%.0f-%.0f Hz", config.Analysis.PitchFloor, config.Analysis.PitchCeiling))
	printKeyValue("Concurrent Stages", fmt.Sprintf("%t", config.Analysis.Concurrent))
	printKeyValue("Formants", fmt.Sprintf("%t", config.Analysis.Formants))
	printSubsection("Speech Rate")
	printKeyValue("  Threshold Percentile", fmt.Sprintf("%.1f", config.Analysis.SpeechRate.ThresholdPercentile))
	printKeyValue("  Min Peak Distance", config.Analysis.SpeechRate.MinPeakDistance.String())

	printSection("VAD CONFIGURATION")
	printKeyValue("Mode", fmt.Sprintf("%d", config.VAD.Mode))
	printKeyValue("Frame Duration", config.VAD.FrameDuration.String())
	printKeyValue("Energy Fallback", fmt.Sprintf("%t", config.VAD.EnergyFallback))
	printKeyValue("Energy Threshold", fmt.Sprintf("%.4f", config.VAD.EnergyThreshold))

	printSection("TRANSCRIPTION CONFIGURATION")
	printKeyValue("Provider", config.Transcription.Provider)
	printKeyValue("URL", config.Transcription.URL)
	printKeyValue("Model", config.Transcription.Model)
	printKeyValue("Language", config.Transcription.Language)
	printKeyValue("API Key", maskSecret(config.Transcription.APIKey))
	printKeyValue("Timeout", config.Transcription.Timeout.String())

	printSection("RENDER CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Render.Enabled))
	printKeyValue("Size", fmt.Sprintf("%dx%d", config.Render.Width, config.Render.Height))

	printSection("OUTPUT CONFIGURATION")
	printKeyValue("Format", config.Output.Format)
	printKeyValue("Pretty", fmt.Sprintf("%t", config.Output.Pretty))

	fmt.Println()
	fmt.Println(strings.Repeat("-", 80))
	if err := config.Validate(); err != nil {
		fmt.Println("CONFIGURATION INVALID")
		fmt.Println(strings.Repeat("=", 80))
		return err
	}
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("Config file: %s\n", used)
	} else {
		fmt.Println("Config file: none (defaults and environment only)")
	}
	fmt.Println(strings.Repeat("=", 80))

	return nil
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

func rateOrAny(rate int) string {
	if rate == 0 {
		return "any"
	}
	return fmt.Sprintf("%d Hz", rate)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
