package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vogtb/go-spreadsheet/cmd/rcsheet/config"
	"github.com/vogtb/go-spreadsheet/cmd/rcsheet/logger"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}
	var configFile string

	// Define root command
	rootCmd := &cobra.Command{
		Use:           "rcsheet",
		Short:         "A small spreadsheet addressed in R<row>C<column> notation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			l, err := logger.New(cfg.Logger, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, l
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file path")
	flags.Int("rows", config.DefaultRows, "rows of a new sheet")
	flags.Int("columns", config.DefaultColumns, "columns of a new sheet")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "text", "log format, text or json")

	// Add subcommands
	rootCmd.AddCommand(
		newEvalCommand(a),
		newShowCommand(a),
		newReplCommand(a),
		newWatchCommand(a),
	)

	return rootCmd
}
