package console_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/hbnb/internal/adapters/file"
	"github.com/aretw0/hbnb/internal/adapters/memory"
	"github.com/aretw0/hbnb/internal/console"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/ports"
	"github.com/aretw0/hbnb/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t     *testing.T
	con   *console.Console
	store *storage.Engine
	out   *bytes.Buffer
}

func newHarness(t *testing.T, opts ...console.Option) *harness {
	t.Helper()
	reg := models.DefaultRegistry()
	reg.Register("Foo", func() *models.Instance { return models.New("Foo") })
	reg.Register("Bar", func() *models.Instance { return models.New("Bar") })

	store := storage.New(memory.New())
	out := &bytes.Buffer{}
	opts = append([]console.Option{console.WithOutput(out), console.WithPrompt("")}, opts...)
	return &harness{
		t:     t,
		con:   console.New(store, reg, opts...),
		store: store,
		out:   out,
	}
}

// exec runs line and returns what it printed, without the trailing newline.
func (h *harness) exec(line string) string {
	h.t.Helper()
	h.out.Reset()
	_, err := h.con.Exec(context.Background(), line)
	require.NoError(h.t, err)
	return strings.TrimSuffix(h.out.String(), "\n")
}

func (h *harness) create(class string) string {
	h.t.Helper()
	id := h.exec("create " + class)
	require.NotEmpty(h.t, id)
	require.True(h.t, h.store.Has(models.Key(class, id)))
	return id
}

func TestConsole_CreateThenShow(t *testing.T) {
	h := newHarness(t)
	for _, class := range models.DefaultClasses {
		id := h.create(class)
		out := h.exec("show " + class + " " + id)
		assert.True(t, strings.HasPrefix(out, "["+class+"] ("+id+") "), out)
	}
}

func TestConsole_DestroyThenShow(t *testing.T) {
	h := newHarness(t)
	id := h.create("User")

	assert.Empty(t, h.exec("destroy User "+id))
	assert.Equal(t, "** no instance found **", h.exec("show User "+id))
	assert.False(t, h.store.Has(models.Key("User", id)))
}

func TestConsole_ValidationOrder(t *testing.T) {
	h := newHarness(t)
	id := h.create("User")

	tests := []struct {
		line string
		want string
	}{
		{"create", "** class name missing **"},
		{"create Nope", "** class doesn't exist **"},
		{"show", "** class name missing **"},
		{"show User", "** instance id missing **"},
		{"show Nope 1 2 3", "** class doesn't exist **"},
		{"show User missing", "** no instance found **"},
		{"destroy", "** class name missing **"},
		{"destroy User", "** instance id missing **"},
		{"update", "** class name missing **"},
		{"update User", "** instance id missing **"},
		{"update Nope " + id + " name Bob", "** class doesn't exist **"},
		{"update User missing name Bob", "** no instance found **"},
		{"update User " + id, "** attribute name missing **"},
		{"update User " + id + " name", "** value missing **"},
		{"dupdate", "** class name missing **"},
		{"dupdate User", "** instance id missing **"},
		{`dupdate Nope 1 {"a": 1}`, "** class doesn't exist **"},
		{`dupdate User missing {"a": 1}`, "** no instance found **"},
		{"dupdate User " + id, "** attribute name missing **"},
		{"all Baz", "** class doesn't exist **"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, h.exec(tt.line))
		})
	}
}

func TestConsole_CallSyntaxMatchesCanonical(t *testing.T) {
	h := newHarness(t)
	id := h.create("Place")

	assert.Equal(t, h.exec("show Place "+id), h.exec(`Place.show("`+id+`")`))
	assert.Equal(t, h.exec("count Place"), h.exec("Place.count()"))
	assert.Equal(t, h.exec("all Place"), h.exec("Place.all()"))
	assert.Equal(t, "** no instance found **", h.exec(`Place.show("nope")`))

	h.exec(`Place.update("` + id + `", "name", "Loft")`)
	obj, ok := h.store.Get(models.Key("Place", id))
	require.True(t, ok)
	v, _ := obj.Get("name")
	assert.Equal(t, "Loft", v)

	h.exec(`Place.destroy("` + id + `")`)
	assert.False(t, h.store.Has(models.Key("Place", id)))
}

func TestConsole_UpdateStoresStrings(t *testing.T) {
	h := newHarness(t)
	id := h.create("User")
	key := models.Key("User", id)
	before, _ := h.store.Get(key)

	assert.Empty(t, h.exec("update User "+id+" age 89"))
	assert.Empty(t, h.exec("update User "+id+` first_name "John Smith"`))
	assert.Empty(t, h.exec("update User "+id+` ok "True" ignored`))

	obj, _ := h.store.Get(key)
	age, _ := obj.Get("age")
	name, _ := obj.Get("first_name")
	ok, _ := obj.Get("ok")
	assert.Equal(t, "89", age)
	assert.Equal(t, "John Smith", name)
	assert.Equal(t, "True", ok)
	assert.False(t, obj.UpdatedAt.Before(before.UpdatedAt))
}

func TestConsole_UpdateUnicodeSeparators(t *testing.T) {
	h := newHarness(t)
	id := h.create("User")
	key := models.Key("User", id)

	assert.Empty(t, h.exec("update User "+id+" name\u00a0x"))
	assert.Empty(t, h.exec("update User "+id+"\u2002city\u2002Porto"))

	obj, _ := h.store.Get(key)
	name, _ := obj.Get("name")
	city, _ := obj.Get("city")
	assert.Equal(t, "x", name)
	assert.Equal(t, "Porto", city)

	assert.Empty(t, h.exec("dupdate User\u00a0"+id+`\u00a0{"zip": "4000"}`))
	obj, _ = h.store.Get(key)
	zip, _ := obj.Get("zip")
	assert.Equal(t, "4000", zip)
}

func TestConsole_UpdateIgnoresReservedFields(t *testing.T) {
	h := newHarness(t)
	id := h.create("User")

	h.exec("update User " + id + " id other")
	assert.True(t, h.store.Has(models.Key("User", id)))
	assert.False(t, h.store.Has(models.Key("User", "other")))
}

func TestConsole_DictUpdateKeepsTypes(t *testing.T) {
	h := newHarness(t)
	id := h.create("User")

	out := h.exec(`User.update("` + id + `", {"age": 5, 'name': "Bob", "admin": True, "tags": ["a"]})`)
	assert.Empty(t, out)
	assert.Empty(t, h.exec("dupdate User "+id+` {"ratio": 0.5, "nick": None}`))

	obj, ok := h.store.Get(models.Key("User", id))
	require.True(t, ok)
	attrs := obj.Attributes()
	assert.Equal(t, 5, attrs["age"])
	assert.Equal(t, "Bob", attrs["name"])
	assert.Equal(t, 0.5, attrs["ratio"])
	assert.Equal(t, true, attrs["admin"])
	assert.Equal(t, []any{"a"}, attrs["tags"])
	assert.Contains(t, attrs, "nick")
	assert.Nil(t, attrs["nick"])
}

func TestConsole_DictUpdateRejectsBadLiterals(t *testing.T) {
	h := newHarness(t)
	id := h.create("User")

	for _, literal := range []string{
		`{}`, `{"name": "Bob"`, `[1, 2]`, `42`,
		`{"a": &x [*x]}`, `{"x": .inf}`, `{"x": .nan}`, `{"x": ~}`, `{"a": bob}`,
	} {
		t.Run(literal, func(t *testing.T) {
			assert.Equal(t, "** attribute name missing **", h.exec("dupdate User "+id+" "+literal))
		})
	}
	obj, _ := h.store.Get(models.Key("User", id))
	assert.Empty(t, obj.Attributes())
}

func TestConsole_RejectedLiteralKeepsStoreWritable(t *testing.T) {
	reg := models.DefaultRegistry()
	path := filepath.Join(t.TempDir(), "file.json")
	store := storage.New(file.New(path))
	out := &bytes.Buffer{}
	con := console.New(store, reg, console.WithOutput(out), console.WithPrompt(""))
	ctx := context.Background()

	_, err := con.Exec(ctx, "create User")
	require.NoError(t, err)
	id := strings.TrimSpace(out.String())

	out.Reset()
	_, err = con.Exec(ctx, "dupdate User "+id+` {"x": .inf}`)
	require.NoError(t, err)
	assert.Equal(t, "** attribute name missing **\n", out.String())

	out.Reset()
	_, err = con.Exec(ctx, "create Place")
	require.NoError(t, err)
	placeID := strings.TrimSpace(out.String())

	reloaded := storage.New(file.New(path))
	require.NoError(t, reloaded.Reload(ctx))
	assert.True(t, reloaded.Has(models.Key("Place", placeID)))
	obj, ok := reloaded.Get(models.Key("User", id))
	require.True(t, ok)
	assert.NotContains(t, obj.Attributes(), "x")
}

func TestConsole_Count(t *testing.T) {
	h := newHarness(t)
	for range 3 {
		h.create("Foo")
	}
	h.create("Bar")

	assert.Equal(t, "3", h.exec("count Foo"))
	assert.Equal(t, "1", h.exec("count Bar"))
	assert.Equal(t, "0", h.exec("count Baz"))
	assert.Equal(t, "3", h.exec("Foo.count()"))
}

func TestConsole_CountArityPrintsHelp(t *testing.T) {
	h := newHarness(t)
	help := h.exec("help count")
	require.Contains(t, help, "count <class>")

	assert.Equal(t, help, h.exec("count"))
	assert.Equal(t, help, h.exec("count Foo Bar"))
}

func TestConsole_All(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "[]", h.exec("all"))

	foo := h.create("Foo")
	bar := h.create("Bar")

	all := h.exec("all")
	assert.Contains(t, all, "[Foo] ("+foo+")")
	assert.Contains(t, all, "[Bar] ("+bar+")")

	onlyBar := h.exec("all Bar")
	assert.True(t, strings.HasPrefix(onlyBar, "['[Bar] ("+bar+") {"), onlyBar)
	assert.True(t, strings.HasSuffix(onlyBar, "}']"), onlyBar)
	assert.NotContains(t, onlyBar, "[Foo]")

	assert.Equal(t, "** class doesn't exist **", h.exec("all Baz"))
}

func TestConsole_Loop(t *testing.T) {
	t.Run("blank lines are ignored", func(t *testing.T) {
		h := newHarness(t)
		assert.Empty(t, h.exec(""))
		assert.Empty(t, h.exec("   \t "))
	})

	t.Run("unknown syntax", func(t *testing.T) {
		h := newHarness(t)
		assert.Equal(t, "*** Unknown syntax: fly User", h.exec("fly User"))
		assert.Equal(t, "*** Unknown syntax: fly User", h.exec("User.fly()"))
		assert.Equal(t, "*** Unknown syntax: !!", h.exec("!!"))
	})

	t.Run("quit stops", func(t *testing.T) {
		h := newHarness(t)
		stop, err := h.con.Exec(context.Background(), "quit")
		require.NoError(t, err)
		assert.True(t, stop)
		assert.Empty(t, h.out.String())
	})

	t.Run("EOF prints a newline and stops", func(t *testing.T) {
		h := newHarness(t)
		stop, err := h.con.Exec(context.Background(), "EOF")
		require.NoError(t, err)
		assert.True(t, stop)
		assert.Equal(t, "\n", h.out.String())
	})
}

func TestConsole_RunTranscript(t *testing.T) {
	in := strings.NewReader("create State\n\ncount State\nquit\ncount State\n")
	out := &bytes.Buffer{}
	con := console.New(storage.New(memory.New()), models.DefaultRegistry(),
		console.WithInput(in), console.WithOutput(out))

	require.NoError(t, con.Run(context.Background()))

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], console.DefaultPrompt))
	assert.Equal(t, console.DefaultPrompt+console.DefaultPrompt+"1", lines[1])
	assert.Equal(t, console.DefaultPrompt, lines[2])
}

func TestConsole_RunStopsAtEndOfInput(t *testing.T) {
	in := strings.NewReader("create City\nall City")
	out := &bytes.Buffer{}
	store := storage.New(memory.New())
	con := console.New(store, models.DefaultRegistry(),
		console.WithInput(in), console.WithOutput(out), console.WithPrompt(""))

	require.NoError(t, con.Run(context.Background()))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "[City] ("+lines[0]+")")
	assert.Equal(t, "", lines[2])
	assert.Equal(t, 1, store.Count("City"))
}

type failingBackend struct {
	ports.Backend
}

func (failingBackend) Save(context.Context, ports.Snapshot) error {
	return errors.New("read-only file system")
}

func TestConsole_SaveFailurePropagates(t *testing.T) {
	in := strings.NewReader("create User\nquit\n")
	con := console.New(storage.New(failingBackend{}), models.DefaultRegistry(),
		console.WithInput(in), console.WithOutput(&bytes.Buffer{}))

	err := con.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only file system")
}

type outcomes map[string][]string

func (o outcomes) ObserveCommand(command, outcome string) {
	o[command] = append(o[command], outcome)
}

func TestConsole_RecordsOutcomes(t *testing.T) {
	rec := outcomes{}
	h := newHarness(t, console.WithRecorder(rec))

	id := h.create("User")
	h.exec("show User " + id)
	h.exec("show User")
	h.exec("bogus")

	assert.Equal(t, []string{console.OutcomeOK}, rec["create"])
	assert.Equal(t, []string{console.OutcomeOK, console.OutcomeInvalid}, rec["show"])
	assert.Equal(t, []string{console.OutcomeUnknown}, rec["bogus"])
}

func TestConsole_Help(t *testing.T) {
	h := newHarness(t)

	index := h.exec("help")
	assert.Contains(t, index, "Documented commands (type help <topic>):")
	for _, name := range console.Commands() {
		assert.Contains(t, index, name)
	}
	assert.Equal(t, h.exec("help show"), h.exec("? show"))
	assert.Equal(t, "*** No help on fly", h.exec("help fly"))
}

func TestConsole_HelpRenderer(t *testing.T) {
	h := newHarness(t, console.WithRenderer(func(s string) (string, error) {
		return strings.ToUpper(s) + "\n\n", nil
	}))
	assert.Contains(t, h.exec("help quit"), "EXITS THE CONSOLE.")

	h = newHarness(t, console.WithRenderer(func(string) (string, error) {
		return "", errors.New("no style")
	}))
	assert.Equal(t, "Exits the console.", h.exec("help quit"))
}

func TestConsole_RejectsOversizedInput(t *testing.T) {
	h := newHarness(t, console.WithMaxInputSize(16))
	out := h.exec("create " + strings.Repeat("X", 32))
	assert.True(t, strings.HasPrefix(out, "*** Invalid input:"), out)
}
