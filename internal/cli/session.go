package cli

import (
	"context"
	"io"
	"os"

	"github.com/aretw0/hbnb/internal/config"
	"github.com/aretw0/hbnb/internal/console"
	"github.com/aretw0/hbnb/internal/presentation/tui"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/storage"
)

// Session wires one interactive console to its streams.
type Session struct {
	In  io.Reader
	Out io.Writer
	// Interactive enables the banner and rendered help. Detected from the streams
	// when nil.
	Interactive *bool
}

// RunSession opens the store described by cfg and runs the console until quit or
// end of input. Ctrl+C ends the session with a nil error.
func RunSession(ctx context.Context, cfg config.Config, s Session) error {
	logger := CreateLogger(cfg.Debug)
	if s.In == nil {
		s.In = os.Stdin
	}
	if s.Out == nil {
		s.Out = os.Stdout
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	engine, err := OpenStore(sigCtx, cfg, storage.WithLogger(logger))
	if err != nil {
		return err
	}
	defer engine.Close()

	logger.Info("Session started", "backend", cfg.Storage.Backend, "objects", len(engine.Keys()))

	interactive := tui.IsTerminal(s.In) && tui.IsTerminal(s.Out)
	if s.Interactive != nil {
		interactive = *s.Interactive
	}

	opts := []console.Option{
		console.WithInput(NewInterruptibleReader(s.In, sigCtx.Done())),
		console.WithOutput(s.Out),
		console.WithPrompt(cfg.Prompt),
		console.WithMaxInputSize(cfg.MaxInputSize),
		console.WithLogger(logger),
	}
	if interactive {
		tui.PrintBanner(s.Out)
		opts = append(opts, console.WithRenderer(tui.NewRenderer(s.Out)))
	}

	err = console.New(engine, models.DefaultRegistry(), opts...).Run(sigCtx)
	if sigCtx.Signal() != nil {
		io.WriteString(s.Out, "\n")
		printSystemMessage(s.Out, "Interrupted.")
	}
	return handleExecutionError(err)
}
