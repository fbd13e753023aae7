// Command directory keeps the provider directory in sync across its storage
// channels and ranks providers by distance from the user.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"brightroots/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "directory",
	Short: "Provider directory sync and ranking",
	Long: `directory reconciles provider listings held in the persistent, session and
shared-state channels and ranks approved providers by distance from the user.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()
		cfgFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./directory.yaml)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
