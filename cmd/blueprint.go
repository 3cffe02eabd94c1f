package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/builder"
	"go-guildbuilder/internal/guild"
)

// exitCode is returned by commands that already printed their failure.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a JSON or YAML blueprint against the schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args[0])
	},
}

var simulateGuildID string

var simulateCmd = &cobra.Command{
	Use:   "simulate <file>",
	Short: "Apply a blueprint to an in-memory guild and print the build log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateGuildID, "guild", "100000000000000000", "guild ID used for the simulated server")
}

// loadBlueprint reads path and validates it, printing schema errors to w.
func loadBlueprint(w io.Writer, path string) (*blueprint.Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := blueprint.ParseAny(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	res, err := blueprint.ValidateJSON(doc)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		fmt.Fprintf(w, "❌ %s is not a valid blueprint:\n%s\n", path, blueprint.FormatErrors(res.Errors))
		return nil, exitCode(2)
	}
	return blueprint.Parse(doc)
}

func runValidate(w io.Writer, path string) error {
	bp, err := loadBlueprint(w, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✅ %s is valid: %d roles, %d categories, %d channels\n",
		path, len(bp.Roles), len(bp.Categories), bp.Categories.ChannelCount())
	fmt.Fprintln(w, blueprint.Preview(bp))
	return nil
}

func runSimulate(ctx context.Context, w io.Writer, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	bp, err := loadBlueprint(w, path)
	if err != nil {
		return err
	}

	svc := guild.NewMemory(simulateGuildID)
	progress := builder.NotifierFunc(func(ctx context.Context, text string) error {
		_, err := fmt.Fprintf(w, "• %s\n", text)
		return err
	})

	res, err := builder.New(nil).Apply(ctx, svc, bp, builder.Options{Notifier: progress, Source: "cli"})
	if err != nil {
		return err
	}

	channels, err := svc.Channels(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nCreated %d roles and %d channels:\n", res.Roles.Len(), len(channels))
	for _, ch := range channels {
		fmt.Fprintf(w, "  %-28s %s\n", ch.Name, guildChannelKind(ch))
	}
	return nil
}

func guildChannelKind(ch *guild.Channel) string {
	if ch.ParentID == "" {
		return fmt.Sprintf("type=%d", ch.Type)
	}
	return fmt.Sprintf("type=%d parent=%s", ch.Type, ch.ParentID)
}
