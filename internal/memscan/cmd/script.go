package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"memscan/internal/command"
	"memscan/internal/memscan/render"
	"memscan/internal/scan"
	"memscan/internal/source"
)

var scriptCmd = &cobra.Command{
	Use:   "script FILE COMMANDS",
	Short: "Apply refinement commands read from a file",
	Long: `Script runs an initial pass over FILE, then applies each line of COMMANDS as
a refinement. With --follow the command file is tailed: lines appended later
are applied as they arrive, until interrupted or no candidates remain.`,
	Example: `
# Commands, one per line
printf '= 95\nunchanged\n' > steps.txt
memscan script save.bin steps.txt --value 100

# Let a test harness drive the scan
memscan script /dev/shm/game.mem steps.txt --follow
  `,
	Args: cobra.ExactArgs(2),
	RunE: runScript,
}

func init() {
	addSourceFlags(scriptCmd)
	scriptCmd.Flags().StringP("value", "v", "", "Initial value; empty or ? keeps every offset")
	scriptCmd.Flags().BoolP("follow", "f", false, "Keep reading commands appended to the file")
	scriptCmd.Flags().BoolP("json", "j", false, "Output final results as JSON")
	scriptCmd.Flags().BoolP("markdown", "m", false, "Output final results as a markdown report")
	scriptCmd.Flags().IntP("max", "n", 0, "Maximum candidates to print (default from config)")
}

func runScript(c *cobra.Command, args []string) error {
	p, err := openSource(c, args[0])
	if err != nil {
		return err
	}
	defer p.Close()

	value, _ := c.Flags().GetString("value")
	s, err := startScan(c, p, value)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	steps := []string{initialStep(value)}
	fmt.Fprintf(out, "%s: %d candidate(s)\n", steps[0], s.Len())
	step := func(st command.Step) error {
		steps = append(steps, st.Criterion.String())
		fmt.Fprintf(out, "%d: %s: %d candidate(s)\n", st.Line, st.Criterion, st.Remaining)
		return nil
	}

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	follow, _ := c.Flags().GetBool("follow")
	if follow {
		err = followScript(ctx, p, s, args[1], step)
	} else {
		err = applyScript(ctx, p, s, args[1], step)
	}
	if err != nil {
		return err
	}

	rep := render.Build(args[0], s, p.Symbolizer(), steps, maxResults(c))
	return writeReport(c, out, rep)
}

func applyScript(ctx context.Context, p *source.Provider, s scan.Scanner, path string, fn func(command.Step) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return command.Run(ctx, reloading{Scanner: s, p: p}, f, fn)
}

// followScript applies lines as they are appended to path. Bad lines are
// logged and skipped; a source that can no longer be read ends the run.
func followScript(ctx context.Context, p *source.Provider, s scan.Scanner, path string, fn func(command.Step) error) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		Poll:      true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("follow %s: %w", path, err)
	}
	defer t.Cleanup()
	defer t.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return line.Err
			}
			n++
			crit, err := refine(p, s, line.Text)
			switch {
			case errors.Is(err, command.ErrEmpty):
				continue
			case errors.Is(err, source.ErrShrunk):
				return err
			case err != nil:
				app.logger.Warn("skipping command", "line", n, "text", line.Text, "err", err)
				continue
			}
			if err := fn(command.Step{Line: n, Criterion: crit, Remaining: s.Len()}); err != nil {
				return err
			}
			if s.Len() == 0 {
				return nil
			}
		}
	}
}
