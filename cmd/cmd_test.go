package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"analyze", "syllables", "vowel", "config-test"} {
		assert.True(t, names[want], want)
	}
}

func TestBindFlagsMapsConfigKeys(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Float64("pitch-floor", 75, "")
	cmd.Flags().String("unrelated", "", "")
	require.NoError(t, cmd.Flags().Set("pitch-floor", "90"))

	v := viper.New()
	require.NoError(t, bindFlags(cmd, v))

	assert.Equal(t, 90.0, v.GetFloat64("analysis.pitch_floor"))
	assert.False(t, v.IsSet("unrelated"))
}

func TestBindFlagsEnvironment(t *testing.T) {
	t.Setenv("SPEECH_ANALYZER_VAD_MODE", "3")

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Int("vad-mode", 2, "")

	v := viper.New()
	require.NoError(t, bindFlags(cmd, v))
	assert.Equal(t, 3, v.GetInt("vad.mode"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("abc"))
	assert.Equal(t, "****cdef", maskSecret("abcdabcdef"[2:]))
}
