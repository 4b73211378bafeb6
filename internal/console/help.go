package console

import (
	"context"
	"slices"
	"strings"
)

const (
	helpCreate = "Creates a new instance of a class, saves it and prints its id.\n\n" +
		"    create <class>\n    <class>.create()"
	helpShow = "Prints the string representation of an instance.\n\n" +
		"    show <class> <id>\n    <class>.show(<id>)"
	helpDestroy = "Deletes an instance and saves the change.\n\n" +
		"    destroy <class> <id>\n    <class>.destroy(<id>)"
	helpUpdate = "Sets one attribute of an instance. The value is stored as a string.\n\n" +
		"    update <class> <id> <attribute> \"<value>\"\n" +
		"    <class>.update(<id>, <attribute>, <value>)\n" +
		"    <class>.update(<id>, {<attribute>: <value>, ...})"
	helpDictUpdate = "Sets every attribute of a dictionary literal, keeping literal types.\n\n" +
		"    dupdate <class> <id> {\"<attribute>\": <value>, ...}"
	helpAll = "Prints every instance, or only the instances of a class.\n\n" +
		"    all [<class>]\n    <class>.all()"
	helpCount = "Prints the number of instances of a class.\n\n" +
		"    count <class>\n    <class>.count()"
	helpHelp = "Lists the commands, or describes one.\n\n    help [<command>]"
	helpQuit = "Exits the console."
	helpEOF  = "Exits the console at end of input."
)

func (c *Console) doHelp(_ context.Context, arg string) (bool, error) {
	topic := strings.TrimSpace(arg)
	if topic == "" {
		c.printIndex()
		return false, nil
	}
	if _, ok := c.commands[topic]; !ok {
		c.invalid = true
		c.println("*** No help on " + topic)
		return false, nil
	}
	c.printHelp(topic)
	return false, nil
}

func (c *Console) printIndex() {
	const title = "Documented commands (type help <topic>):"
	c.println("")
	c.println(title)
	c.println(strings.Repeat("=", len(title)))
	c.println(strings.Join(Commands(), "  "))
	c.println("")
}

func (c *Console) printHelp(name string) {
	text := c.commands[name].help
	if c.renderer != nil {
		rendered, err := c.renderer(text)
		if err != nil {
			c.logger.Debug("Help rendering failed", "command", name, "err", err)
		} else {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	c.println(text)
}

func sortedNames(names []string) []string {
	slices.Sort(names)
	return names
}
