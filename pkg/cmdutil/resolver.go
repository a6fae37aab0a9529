package cmdutil

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

// ResolveConfirmDestructive returns a kong.Resolver that, for any
// required bool flag tagged type:"confirm", prompts the operator to type
// "yes" before a destructive operation proceeds — unless the flag was
// already set on the command line (e.g. --force) or stdin isn't a
// terminal, in which case it resolves to true without prompting so
// scripted invocations are never blocked waiting on input that will
// never arrive.
func ResolveConfirmDestructive() kong.Resolver {
	return kong.ResolverFunc(func(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		if flag.Tag.Type != "confirm" || flag.Value.Set {
			return nil, nil
		}
		if flag.Target.Kind() != reflect.Bool {
			return nil, fmt.Errorf(`'confirm' type must be applied to a bool not %s`, flag.Target.Type())
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return true, nil
		}

		fmt.Print("This operation is destructive. Type \"yes\" to continue: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("could not read confirmation: %v", err)
		}
		return strings.TrimSpace(line) == "yes", nil
	})
}
