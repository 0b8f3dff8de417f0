package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sandeepkv93/streakd/internal/app"
	"github.com/sandeepkv93/streakd/internal/config"
	"github.com/sandeepkv93/streakd/internal/focus"
)

const usage = `usage: streakd [-config FILE] [command]

commands:
  (none)            open the tracker
  export PATH|-     write all tasks as JSON
  import PATH       replace all tasks from a JSON export
  focus [-task ID]  run one focus session in the terminal
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "streakd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("streakd", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	configPath := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	rest := fs.Args()
	if len(rest) == 0 {
		return application.RunTUI(ctx)
	}
	switch rest[0] {
	case "export":
		return exportTasks(application, rest[1:])
	case "import":
		return importTasks(ctx, application, rest[1:])
	case "focus":
		return runFocus(ctx, application, rest[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func exportTasks(a *app.Application, args []string) error {
	if len(args) != 1 {
		return errors.New("export needs a path or -")
	}
	if args[0] == "-" {
		return a.Tracker.Export(os.Stdout)
	}
	path := args[0]
	tmp, err := os.CreateTemp(filepath.Dir(path), ".streakd-export-*")
	if err != nil {
		return err
	}
	if err := a.Tracker.Export(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func importTasks(ctx context.Context, a *app.Application, args []string) error {
	if len(args) != 1 {
		return errors.New("import needs a path")
	}
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	n, err := a.Tracker.Import(ctx, r)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d task(s)\n", n)
	return nil
}

// runFocus drives a single focus session without the TUI and exits when the
// work cycle ends.
func runFocus(ctx context.Context, a *app.Application, args []string) error {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	taskID := fs.String("task", "", "task id to bind to the session")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tr := a.Tracker
	if *taskID != "" {
		task, err := tr.BindFocus(*taskID)
		if err != nil {
			return err
		}
		fmt.Printf("focusing on %q\n", task.Title)
	}
	gen, _ := tr.StartFocus()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var tickErr error
	driver := focus.Driver{
		Interval: time.Second,
		Advance: func() {
			c, done, err := tr.FocusTick(runCtx, gen)
			if err != nil {
				tickErr = err
			}
			if done {
				fmt.Printf("\rsession %d complete, %s next\n", c.Sessions, c.Next.Label())
				cancel()
				return
			}
			st := tr.Focus()
			fmt.Printf("\r%s %s ", st.Mode.Label(), focus.FormatRemaining(st.Remaining))
		},
	}
	err := driver.Run(runCtx)
	if tickErr != nil {
		return tickErr
	}
	if errors.Is(err, context.Canceled) {
		if ctx.Err() != nil {
			tr.PauseFocus()
			fmt.Println("\nfocus interrupted")
		}
		return nil
	}
	return err
}
