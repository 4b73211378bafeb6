package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/storage"
)

// Command names.
const (
	cmdCreate     = "create"
	cmdShow       = "show"
	cmdDestroy    = "destroy"
	cmdUpdate     = "update"
	cmdDictUpdate = "dupdate"
	cmdAll        = "all"
	cmdCount      = "count"
	cmdHelp       = "help"
	cmdQuit       = "quit"
	cmdEOF        = "EOF"
)

type handler func(c *Console, ctx context.Context, arg string) (stop bool, err error)

type command struct {
	run  handler
	help string
}

func commandTable() map[string]command {
	return map[string]command{
		cmdCreate:     {run: (*Console).doCreate, help: helpCreate},
		cmdShow:       {run: (*Console).doShow, help: helpShow},
		cmdDestroy:    {run: (*Console).doDestroy, help: helpDestroy},
		cmdUpdate:     {run: (*Console).doUpdate, help: helpUpdate},
		cmdDictUpdate: {run: (*Console).doDictUpdate, help: helpDictUpdate},
		cmdAll:        {run: (*Console).doAll, help: helpAll},
		cmdCount:      {run: (*Console).doCount, help: helpCount},
		cmdHelp:       {run: (*Console).doHelp, help: helpHelp},
		cmdQuit:       {run: (*Console).doQuit, help: helpQuit},
		cmdEOF:        {run: (*Console).doEOF, help: helpEOF},
	}
}

// Commands returns the names of every command the console understands.
func Commands() []string {
	names := make([]string, 0, len(commandTable()))
	for name := range commandTable() {
		names = append(names, name)
	}
	return sortedNames(names)
}

func (c *Console) invalidArgs(args []string, depth int) bool {
	if c.checkArgs(args, depth) {
		return false
	}
	c.invalid = true
	return true
}

func (c *Console) doCreate(ctx context.Context, arg string) (bool, error) {
	args := strings.Fields(arg)
	if c.invalidArgs(args, needClass) {
		return false, nil
	}

	obj, err := c.registry.New(args[0])
	if err != nil {
		return false, err
	}
	c.store.New(obj)
	if err := c.store.Save(ctx); err != nil {
		return false, err
	}
	c.println(obj.ID)
	return false, nil
}

func (c *Console) doShow(_ context.Context, arg string) (bool, error) {
	args := strings.Fields(arg)
	if c.invalidArgs(args, needID) {
		return false, nil
	}

	obj, ok := c.store.Get(models.Key(args[0], args[1]))
	if !ok {
		c.invalid = true
		c.fail(MsgNoInstance)
		return false, nil
	}
	c.println(obj.String())
	return false, nil
}

func (c *Console) doDestroy(ctx context.Context, arg string) (bool, error) {
	args := strings.Fields(arg)
	if c.invalidArgs(args, needID) {
		return false, nil
	}

	c.store.Delete(models.Key(args[0], args[1]))
	return false, c.store.Save(ctx)
}

func (c *Console) doUpdate(ctx context.Context, arg string) (bool, error) {
	args := strings.Fields(arg)
	if c.invalidArgs(args, needValue) {
		return false, nil
	}

	name := stripQuotes(args[2])
	value := updateValue(skipFields(arg, 3))
	return false, c.apply(ctx, models.Key(args[0], args[1]), map[string]any{name: value})
}

// updateValue returns the raw string value of an update command. A value opening
// with a double quote extends to the closing quote so it may contain spaces.
// Values are never converted to other types.
func updateValue(rest string) string {
	if quoted, ok := strings.CutPrefix(rest, `"`); ok {
		if end := strings.IndexByte(quoted, '"'); end >= 0 {
			return quoted[:end]
		}
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return stripQuotes(fields[0])
}

// skipFields drops the first n whitespace-delimited fields of s, splitting where
// strings.Fields does.
func skipFields(s string, n int) string {
	s = strings.TrimSpace(s)
	for range n {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		s = strings.TrimSpace(s[i:])
	}
	return s
}

func (c *Console) doDictUpdate(ctx context.Context, arg string) (bool, error) {
	args := splitDictArgs(arg)
	if c.invalidArgs(args, needID) {
		return false, nil
	}

	if len(args) < 3 {
		c.invalid = true
		c.fail(MsgAttrMissing)
		return false, nil
	}
	attrs, err := DecodeLiteral(args[2])
	if err != nil || len(attrs) == 0 {
		c.logger.Debug("Rejected dictionary literal", "literal", args[2], "err", err)
		c.invalid = true
		c.fail(MsgAttrMissing)
		return false, nil
	}
	return false, c.apply(ctx, models.Key(args[0], args[1]), attrs)
}

// splitDictArgs splits "class id {literal}" into at most three pieces, keeping the
// literal whole.
func splitDictArgs(arg string) []string {
	var args []string
	rest := strings.TrimSpace(arg)
	for len(args) < 2 && rest != "" {
		i := strings.IndexFunc(rest, unicode.IsSpace)
		if i < 0 {
			args = append(args, rest)
			rest = ""
			break
		}
		args = append(args, rest[:i])
		rest = strings.TrimSpace(rest[i:])
	}
	if rest != "" {
		args = append(args, rest)
	}
	return args
}

func (c *Console) apply(ctx context.Context, key string, attrs map[string]any) error {
	if err := c.store.Update(key, attrs, true); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.invalid = true
			c.fail(MsgNoInstance)
			return nil
		}
		return err
	}
	return c.store.Save(ctx)
}

func (c *Console) doAll(_ context.Context, arg string) (bool, error) {
	args := strings.Fields(arg)
	class := ""
	if len(args) > 0 {
		if c.invalidArgs(args, needClass) {
			return false, nil
		}
		class = args[0]
	}

	objs := c.store.All(class)
	reprs := make([]string, len(objs))
	for i, obj := range objs {
		reprs[i] = quoteRepr(obj.String())
	}
	c.println("[" + strings.Join(reprs, ", ") + "]")
	return false, nil
}

func (c *Console) doCount(_ context.Context, arg string) (bool, error) {
	args := strings.Fields(arg)
	if len(args) != 1 {
		c.invalid = true
		c.printHelp(cmdCount)
		return false, nil
	}
	c.println(fmt.Sprint(c.store.Count(args[0])))
	return false, nil
}

func (c *Console) doQuit(context.Context, string) (bool, error) {
	return true, nil
}

func (c *Console) doEOF(context.Context, string) (bool, error) {
	c.println("")
	return true, nil
}

// quoteRepr quotes one element of the all listing. Single quotes are used unless s
// contains a single quote and no double quote.
func quoteRepr(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteRune(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case quote:
			b.WriteRune('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
