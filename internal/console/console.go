package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/hbnb/internal/logging"
	"github.com/aretw0/hbnb/pkg/models"
)

// DefaultPrompt is printed before every line is read.
const DefaultPrompt = "(hbnb) "

// Store is the object store the console drives.
type Store interface {
	All(class string) []*models.Instance
	Get(key string) (*models.Instance, bool)
	Has(key string) bool
	Count(class string) int
	New(obj *models.Instance)
	Delete(key string) bool
	Update(key string, attrs map[string]any, touch bool) error
	Save(ctx context.Context) error
}

// Recorder receives one observation per dispatched command.
type Recorder interface {
	ObserveCommand(command, outcome string)
}

// ContentRenderer transforms help text before it is printed (e.g. Markdown to ANSI).
type ContentRenderer func(string) (string, error)

// Outcome labels passed to Recorder.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
	OutcomeUnknown = "unknown"
)

// Console reads command lines, rewrites the call syntax and dispatches them to the
// command handlers. It is not safe for concurrent use; create one per input stream.
type Console struct {
	store    Store
	registry *models.Registry

	reader   *bufio.Reader
	writer   io.Writer
	prompt   string
	maxInput int
	renderer ContentRenderer
	recorder Recorder
	logger   *slog.Logger

	commands map[string]command
	invalid  bool
}

// Option configures the Console.
type Option func(*Console)

// WithInput sets the line source. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(c *Console) {
		c.reader = bufio.NewReader(r)
	}
}

// WithOutput sets where results and messages are printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Console) {
		c.writer = w
	}
}

// WithPrompt overrides DefaultPrompt. An empty prompt prints nothing.
func WithPrompt(prompt string) Option {
	return func(c *Console) {
		c.prompt = prompt
	}
}

// WithMaxInputSize sets the longest accepted line in bytes.
func WithMaxInputSize(n int) Option {
	return func(c *Console) {
		c.maxInput = n
	}
}

// WithRenderer configures the help renderer.
func WithRenderer(r ContentRenderer) Option {
	return func(c *Console) {
		c.renderer = r
	}
}

// WithRecorder configures command metrics.
func WithRecorder(r Recorder) Option {
	return func(c *Console) {
		c.recorder = r
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New creates a console over store and registry.
func New(store Store, registry *models.Registry, opts ...Option) *Console {
	c := &Console{
		store:    store,
		registry: registry,
		writer:   os.Stdout,
		prompt:   DefaultPrompt,
		maxInput: DefaultMaxInputSize,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reader == nil {
		c.reader = bufio.NewReader(os.Stdin)
	}
	c.commands = commandTable()
	return c
}

// Run reads and executes lines until quit, end of input, or a store failure.
// Quit and end of input return nil.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(c.writer, c.prompt)

		text, readErr := c.reader.ReadString('\n')
		if text != "" {
			stop, err := c.Exec(ctx, strings.TrimRight(text, "\r\n"))
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				_, err := c.Exec(ctx, cmdEOF)
				return err
			}
			return fmt.Errorf("input error: %w", readErr)
		}
	}
}

// Exec runs a single line. It reports whether the line asked the console to stop.
// Validation problems are printed, never returned; the error is reserved for store
// failures.
func (c *Console) Exec(ctx context.Context, line string) (bool, error) {
	clean, err := SanitizeInput(line, c.maxInput)
	if err != nil {
		c.println("*** Invalid input: " + err.Error())
		c.observe("", OutcomeInvalid)
		return false, nil
	}

	line = strings.TrimSpace(Rewrite(strings.TrimSpace(clean)))
	name, arg := parseLine(line)

	switch {
	case line == "":
		return false, nil
	case name == "":
		c.println("*** Unknown syntax: " + line)
		c.observe("", OutcomeUnknown)
		return false, nil
	}

	cmd, ok := c.commands[name]
	if !ok {
		c.println("*** Unknown syntax: " + line)
		c.observe(name, OutcomeUnknown)
		return false, nil
	}

	c.invalid = false
	stop, err := cmd.run(c, ctx, arg)
	switch {
	case err != nil:
		c.observe(name, OutcomeError)
		c.logger.Error("Command failed", "command", name, "err", err)
	case c.invalid:
		c.observe(name, OutcomeInvalid)
	default:
		c.observe(name, OutcomeOK)
	}
	c.logger.Debug("Command dispatched", "command", name, "arg", arg)
	return stop, err
}

// parseLine splits a canonical line into the command word and the rest.
// "?" is shorthand for help.
func parseLine(line string) (string, string) {
	if strings.HasPrefix(line, "?") {
		return cmdHelp, strings.TrimSpace(line[1:])
	}
	i := 0
	for i < len(line) && isIdentChar(line[i]) {
		i++
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.writer, s)
}

func (c *Console) observe(command, outcome string) {
	if c.recorder != nil {
		c.recorder.ObserveCommand(command, outcome)
	}
}
