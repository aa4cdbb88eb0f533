package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nieomylnieja/apibgen/internal/config"
	"github.com/nieomylnieja/apibgen/internal/diag"
	"github.com/nieomylnieja/apibgen/internal/pathutils"
	"github.com/nieomylnieja/apibgen/pkg/blueprint"
)

// Version information set at build time.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "apibgen",
		Short: "Generate API Blueprint documentation from annotated Go routes",
		Long: `apibgen scans a Go project for annotated route registrations and
renders an API Blueprint (FORMAT: 1A) document.

Routes are method calls like r.Get("/users/:id", handler) on a recognized
routing-object type, documented with a tag grammar in the comment directly
above the call: @param, @query, @response and @body.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		generateCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var fatal *blueprint.FatalError
		if errors.As(err, &fatal) {
			fmt.Fprintf(os.Stderr, "apibgen: %s\n", fatal.Error())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var (
		configPath string
		project    string
		output     string
		host       string
		title      string
		watch      bool
		debounce   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the blueprint document",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProjectRoot(project)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(root, configPath)
			if err != nil {
				return blueprint.Fatal(err)
			}
			if output != "" {
				cfg.Output = output
			}
			if host != "" {
				cfg.Host = host
			}
			if title != "" {
				cfg.Title = title
			}
			if err := cfg.Validate(); err != nil {
				return blueprint.Fatal(err)
			}

			rep := &diag.Console{Out: os.Stderr}
			if watch {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				err := blueprint.Watch(ctx, root, cfg, rep, debounce)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			return blueprint.Generate(root, cfg, rep)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration file")
	cmd.Flags().StringVarP(&project, "project", "p", ".", "path to the Go project to document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "API host (overrides config)")
	cmd.Flags().StringVar(&title, "title", "", "document title (overrides config)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate on file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "delay before a change triggers a pass")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the apibgen version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("apibgen " + version)
		},
	}
}

func resolveProjectRoot(project string) (string, error) {
	root, err := pathutils.Root(project)
	if err != nil {
		return "", errors.Wrapf(err, "no Go module found at %s", project)
	}
	return root, nil
}

func loadConfig(root, configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	defaultPath := filepath.Join(root, config.DefaultFileName)
	if _, err := os.Stat(defaultPath); err == nil {
		return config.Load(defaultPath)
	}
	return config.Default(), nil
}
