package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-guildbuilder/internal/bootstrap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "guildbuilder",
	Short:         "Discord server builder bot",
	Long:          `Builds Discord servers from JSON/YAML blueprints, generated by an AI designer or imported by the owner.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Connect to Discord and serve /setup",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the JSON config file")
	rootCmd.AddCommand(botCmd, validateCmd, simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := err.(exitCode); ok {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	fmt.Println("Starting Guild Builder")

	b := bootstrap.New(configPath)
	if err := b.Initialize(); err != nil {
		return err
	}
	if err := b.Start(); err != nil {
		b.Shutdown()
		return err
	}

	fmt.Println("Bot connected and commands registered")

	waitForShutdown()

	return b.Shutdown()
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutdown signal received")
}
