package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jt-lab-com/docs/internal/config"
	"github.com/jt-lab-com/docs/internal/pipeline"
)

var appVersion = "0.1.0"

type flags struct {
	cfgFile string
	root    string
	debug   bool
	width   int
	height  int
	quality int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "thumbgen",
		Short: "Generate thumbnails for the documentation images",
		Long: `thumbgen scans static/images for source images and writes a cover-cropped
JPEG thumbnail for each one into static/images/thumbnails. Existing thumbnails
are left untouched.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag parsing succeeded; later failures are not usage errors.
			cmd.SilenceUsage = true
			return generate(cmd, f)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appVersion)
		},
	}
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVarP(&f.cfgFile, "config", "c", "", "YAML config file applied before flags")
	rootCmd.Flags().StringVar(&f.root, "root", ".", "documentation site root")
	rootCmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug logging")
	rootCmd.Flags().IntVar(&f.width, "width", 0, fmt.Sprintf("thumbnail width in pixels (default %d)", config.DefaultWidth))
	rootCmd.Flags().IntVar(&f.height, "height", 0, fmt.Sprintf("thumbnail height in pixels (default %d)", config.DefaultHeight))
	rootCmd.Flags().IntVar(&f.quality, "quality", 0, fmt.Sprintf("JPEG quality 1-100 (default %d)", config.DefaultQuality))

	return rootCmd
}

func generate(cmd *cobra.Command, f flags) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Thumbnail generator %s\n\n", appVersion)

	var cfg *config.Config
	var err error

	if f.cfgFile != "" {
		cfg, err = config.LoadFromFile(f.cfgFile, f.root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig(f.root)
	}

	cfg.Apply(config.Overrides{
		Debug:   f.debug,
		Width:   f.width,
		Height:  f.height,
		Quality: f.quality,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	g, err := pipeline.New(cfg, pipeline.WithConsole(out))
	if err != nil {
		return err
	}

	_, err = g.Run()
	if closeErr := g.Close(); err == nil {
		err = closeErr
	}
	return err
}
