// Package cmd wires the g3planner CLI's cobra commands and viper
// configuration loading, grounded on Iron-Ham-claudio's internal/cmd/root.go
// (same OnInitialize/config-search-path/env-prefix pattern, adapted from
// "claudio"/"CLAUDIO" to "g3planner"/"G3PLANNER").
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgeplan/g3planner/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "g3planner",
	Short: "Planning-mode orchestrator for a coding agent workspace",
	Long: `g3planner repeats a fixed phase sequence
(startup, recovery, discovery, refine, implement, complete), refining a
requirements draft with the user before handing it to a coach/player
sub-agent inner loop and committing the result, then looping back to
refine the next requirements draft until the user quits.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/g3planner/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/g3planner")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("G3PLANNER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.ReadInConfig()
}
