package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-assembler/internal/logger"
)

const (
	logFormatFlag = "log-format"
	logLevelFlag  = "log-level"
)

// newRootCommand lets every subcommand read its settings from flags,
// environment variables prefixed with ASSEMBLE, or assemble.yaml (in that
// order).
func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetConfigName("assemble")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ASSEMBLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for _, path := range []string{".", "$HOME/.assemble"} {
		v.AddConfigPath(path)
	}
	// A missing config file is fine; flags and env still apply.
	_ = v.ReadInConfig()

	root := &cobra.Command{
		Use:          "assemble",
		Short:        "Assemble whole subjects from chunked prediction streams",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String(logFormatFlag, "text", "log format: 'text' or 'json'")
	flags.String(logLevelFlag, "info", "log level: 'none', 'debug', 'info', 'warn' or 'error'")
	mustBindPFlag(v, logFormatFlag, flags.Lookup(logFormatFlag))
	mustBindPFlag(v, logLevelFlag, flags.Lookup(logLevelFlag))

	root.AddCommand(newRunCommand(v), newSynthCommand(v))
	return root
}

// mustBindPFlag binds a flag to a key and panics if the binding fails.
func mustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	return logger.NewLogger(v.GetString(logFormatFlag), v.GetString(logLevelFlag))
}
