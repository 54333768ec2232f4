package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/famney/famney/internal/cli"
	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/config"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "famney",
		Short: "🏠 Family budget categories",
		Long: `famney keeps the income and expense categories of a family budget.

Every family starts from a default catalogue that can be extended,
renamed, deactivated and exchanged as YAML or CSV.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/famney/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("family", "", "family ID (default: family.id from config)")

	// Bind flags to viper
	_ = a.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = a.v.BindPFlag("family.id", rootCmd.PersistentFlags().Lookup("family"))

	// Add commands
	rootCmd.AddCommand(a.categoriesCmd())
	rootCmd.AddCommand(a.transactionsCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := interrupts.HandleInterrupts(context.Background())

	err := newRootCmd().ExecuteContext(ctx)
	stop() // Always cleanup

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, cli.FormatError(userErr.Error()))
		} else {
			fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}

	if err := config.ConfigureViper(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return common.NewUserError("configuration is not valid", err)
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "famney %s\n", version)
			return err
		},
	}
}
