package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command. Detection runs directly on the root
// so the tool works as a plain filter: hedgewatch --in doc.txt --out -
var rootCmd = &cobra.Command{
	Use:   "hedgewatch",
	Short: "Hedgewatch - plausible-deniability phrasing detector",
	Long: `Hedgewatch flags sentences that lean on plausible-deniability phrasing:
hedged attributions, deniable sourcing, rhetorical questions and similar
escape hatches.

It is a deterministic, auditable rule engine driven by an external pattern
library. It does not parse language, learn weights, or decide what anyone
meant - it reports which configured signals fired and how they scored.

Input is free text or JSONL (auto-detected) from a file or STDIN; output is
one JSON record per flagged sentence with exact character offsets into the
source document.`,
	Args:          cobra.NoArgs,
	RunE:          runDetect,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hedgewatch v0.2.4")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.hedgewatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.hedgewatch")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match HEDGEWATCH_*
	viper.SetEnvPrefix("HEDGEWATCH")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
