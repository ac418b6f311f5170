package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/speech-analyzer/configs"
	"github.com/RyanBlaney/speech-analyzer/internal/app"
)

const envPrefix = "SPEECH_ANALYZER"

var (
	configFile   string
	verbose      bool
	logLevel     string
	logFormat    string
	outputFormat string
	outputFile   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "speech-analyzer",
	Short: "Acoustic feature extraction for speech recordings",
	Long: `Extract frame-level acoustic features from speech recordings.

The analyzer reports pitch, jitter and shimmer, RMS energy and loudness,
zero-crossing rate, spectral centroid, speech rate and voiced segments.
Recognized syllables can be placed on the recording for diadochokinetic
(pa-ta-ka) tasks.

Input may be wav or mp3. Other containers are decoded with ffmpeg when it
is installed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/speech-analyzer/speech-analyzer.yaml)")

	// Output and logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output, including pipeline metrics")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console",
		"log encoding (console, json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"output format (json, yaml, table, csv)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output-file", "",
		"write results to this file instead of stdout")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "speech-analyzer"))
		}
		viper.AddConfigPath("/etc/speech-analyzer")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("speech-analyzer")
		viper.SetConfigType("yaml")
	}

	// Environment variable support
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	configs.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper())
}

// bindFlags binds each cobra flag to its associated viper configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}

		envVarSuffix := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
		if err := v.BindEnv(key, envPrefix+"_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// flagKeys maps command flags onto configuration keys
var flagKeys = map[string]string{
	"verbose":           "verbose",
	"log-level":         "log_level",
	"log-format":        "log_format",
	"pitch-floor":       "analysis.pitch_floor",
	"pitch-ceiling":     "analysis.pitch_ceiling",
	"vad-mode":          "vad.mode",
	"ffmpeg":            "audio.ffmpeg_path",
	"required-rate":     "audio.required_input_rate",
	"provider":          "transcription.provider",
	"transcription-url": "transcription.url",
	"language":          "transcription.language",
}

// newApp builds the application for a command run
func newApp() (*app.App, error) {
	return app.NewApp(&app.Context{
		OutputFile:   outputFile,
		OutputFormat: outputFormat,
		Verbose:      verbose,
	}, viper.GetViper())
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
