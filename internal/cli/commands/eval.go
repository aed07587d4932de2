package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/clauses/internal/rules"
)

// NewEvalCommand creates the eval command
func NewEvalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <function> [args...]",
		Short: "Call a function from the rule file",
		Long: `Call a function declared in the rule file and print its result.

Each argument is read as a YAML value: 3 is an int, 2.5 a float, true a
bool, [1, 2] a list and anything else a string. Scoped functions are named
scope.function. Use -- before negative numbers.`,
		Example: `  clauses eval factorial 5
  clauses eval text.size hello
  clauses eval classify -- -3`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEval,
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	reg, err := a.load()
	if err != nil {
		return err
	}

	fn, err := a.lookup(reg, args[0])
	if err != nil {
		return err
	}

	callArgs := make([]any, len(args)-1)
	for i, s := range args[1:] {
		callArgs[i] = rules.ParseArg(s)
	}

	a.logger.Debug("eval", zap.String("function", args[0]), zap.Any("args", callArgs))

	result, err := fn.Call(callArgs...)
	if err != nil {
		return err
	}

	return a.render(result, func() {
		fmt.Fprintln(a.out, formatResult(result))
	})
}

func formatResult(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprint(v)
}
