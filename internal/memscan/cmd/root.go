package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/charmbracelet/fang"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"memscan/internal/config"
	"memscan/internal/logging"
	mlog "memscan/internal/memscan/log"
)

// state is what the persistent pre-run hands to subcommands.
type state struct {
	cfg        *config.Config
	logger     *logging.LoggerCloser
	cpuProfile *os.File
}

var app state

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().StringP("data-dir", "D", "", "Custom memscan data directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().String("cpuprofile", "", "Write CPU profile to file")
	rootCmd.PersistentFlags().String("memprofile", "", "Write memory profile to file")

	rootCmd.AddCommand(scanCmd, tuiCmd, scriptCmd, findCmd, dumpCmd, sectionsCmd)
}

var rootCmd = &cobra.Command{
	Use:   "memscan",
	Short: "Progressive memory value scanner",
	Long: `Memscan locates values inside a block of memory by scanning it and then
narrowing the candidates over repeated passes, the way game trainers find
the address of a health counter.

The memory is a file (or an ELF section of one) mapped read-only, so writes
made by another process show up between passes.`,
	Example: `
# Find every 32-bit 100 in a save file, then keep the ones that dropped to 95
memscan scan save.bin --value 100 --then "= 95"

# Scan the .data section of a binary interactively
memscan tui ./game --section .data --type i32 --value 100

# Drive refinement from a file another process appends to
memscan script dump.bin commands.txt --follow
  `,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func setup(cmd *cobra.Command, _ []string) error {
	if _, err := ResolveCwd(cmd); err != nil {
		return err
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	configPath, _ := cmd.Flags().GetString("config")
	loader := config.NewLoader(dataDir)
	cfg, err := loader.Load(configPath)
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = loader.Path()
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.NoColor = true
	}
	if !isTerminal(cmd.OutOrStdout()) {
		cfg.NoColor = true
	}
	if cfg.NoColor {
		os.Setenv("MEMSCAN_NO_COLOR", "1")
	}

	mlog.Setup("", cfg.Debug)
	app = state{cfg: cfg, logger: logging.NewLogger()}
	if cfg.Debug {
		app.logger.SetLevel(clog.DebugLevel)
	}
	slog.Debug("config loaded", "path", configPath, "dataDir", cfg.DataDir, "type", cfg.Type)

	if cpuprofile, _ := cmd.Flags().GetString("cpuprofile"); cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		app.cpuProfile = f
	}
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if app.cpuProfile != nil {
		pprof.StopCPUProfile()
		app.cpuProfile.Close()
		app.cpuProfile = nil
	}
	if memprofile, _ := cmd.Flags().GetString("memprofile"); memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
	}
	if app.logger != nil {
		return app.logger.Close()
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// color reports whether output to w should be styled.
func color(w io.Writer) bool {
	return app.cfg != nil && !app.cfg.NoColor && isTerminal(w)
}

// Execute runs the command tree. fang renders help and errors as styled
// markdown, which is noise when piping, so plain cobra handles that case.
func Execute() error {
	if !term.IsTerminal(os.Stdout.Fd()) {
		return rootCmd.Execute()
	}
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	)
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}

// resolveFile returns the absolute path of file after checking it exists.
func resolveFile(file string) (string, error) {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %v", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", file)
		}
		return "", fmt.Errorf("cannot access file: %v", err)
	}
	return absPath, nil
}
