package console

import "github.com/aretw0/hbnb/pkg/models"

// User-facing validation messages, printed as "** <message> **".
const (
	MsgClassMissing = "class name missing"
	MsgClassUnknown = "class doesn't exist"
	MsgIDMissing    = "instance id missing"
	MsgNoInstance   = "no instance found"
	MsgAttrMissing  = "attribute name missing"
	MsgValueMissing = "value missing"
)

// How many positional arguments a command validates.
const (
	needClass = 1
	needID    = 2
	needAttr  = 3
	needValue = 4
)

// checkArgs walks the validation ladder for args up to depth and prints the first
// failure. Later rungs are never evaluated once one fails.
//
//	1 class missing  2 class unknown  3 id missing  4 no instance
//	5 attribute missing  6 value missing
func (c *Console) checkArgs(args []string, depth int) bool {
	size := len(args)

	if depth >= needClass {
		if size == 0 {
			c.fail(MsgClassMissing)
			return false
		}
		if !c.registry.Has(args[0]) {
			c.fail(MsgClassUnknown)
			return false
		}
	}
	if depth >= needID {
		if size == 1 {
			c.fail(MsgIDMissing)
			return false
		}
		if !c.store.Has(models.Key(args[0], args[1])) {
			c.fail(MsgNoInstance)
			return false
		}
	}
	if depth >= needAttr && size == 2 {
		c.fail(MsgAttrMissing)
		return false
	}
	if depth >= needValue && size == 3 {
		c.fail(MsgValueMissing)
		return false
	}
	return true
}

func (c *Console) fail(msg string) {
	c.println("** " + msg + " **")
}
