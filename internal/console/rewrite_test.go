package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"show", `Foo.show(123)`, `show Foo 123`},
		{"show quoted id", `User.show("246c227a-d5c1")`, `show User 246c227a-d5c1`},
		{"destroy", `User.destroy("42")`, `destroy User 42`},
		{"create empty parens", `User.create()`, `create User `},
		{"all keeps args", `User.all()`, `all User `},
		{"count keeps quotes", `User.count("x")`, `count User "x"`},
		{"update positional", `User.update("38f2", "first_name", "John")`, `update User 38f2 first_name John`},
		{"update without space after comma", `User.update("38f2","age","89")`, `update User 38f2 age 89`},
		{"update extra commas stay in value", `User.update("1", "a", "b", "c")`, `update User 1 a b, c`},
		{"update dictionary", `Foo.update("123", {"name": "Bob"})`, `dupdate Foo 123 {"name": "Bob"}`},
		{"update dictionary several keys", `User.update("38f2", {'first_name': "John", "age": 89})`, `dupdate User 38f2 {'first_name': "John", "age": 89}`},
		{"update only id", `User.update("38f2")`, `update User 38f2`},
		{"unknown method still rewritten", `User.fly("x")`, `fly User x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rewrite(tt.in))
		})
	}
}

func TestRewrite_PassThrough(t *testing.T) {
	lines := []string{
		"",
		"show Foo 123",
		"update User 1 name Bob",
		"all",
		"quit",
		"user.show(1)",      // class must be uppercase-led
		"User.show(1) tail", // must end with ')'
		"User show(1)",      // needs a dot
	}
	for _, line := range lines {
		assert.Equal(t, line, Rewrite(line), "line %q must pass through", line)
	}
}

func TestRewrite_IsPure(t *testing.T) {
	in := `Place.update("7", {"rooms": 3})`
	assert.Equal(t, Rewrite(in), Rewrite(in))
}

func TestRewrite_LexicalLimitation(t *testing.T) {
	// A dot inside an argument is taken as a separator; the result is a wrong
	// (but deterministic) canonical line.
	got := Rewrite(`User.update("1", "email", "a@b.com")`)
	assert.Equal(t, `update User 1 email a@b`, got)
}
