package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/clauses/internal/cli/ui"
	"github.com/conduit-lang/clauses/runtime/clause"
)

// NewDescribeCommand creates the describe command
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [function]",
		Short: "List functions and their clauses",
		Long: `List every function in the rule file with its clauses in dispatch order,
or a single function when one is named.`,
		Example: `  clauses describe
  clauses describe factorial --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDescribe,
	}
}

func runDescribe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	reg, err := a.load()
	if err != nil {
		return err
	}

	var fns []*clause.Function
	if len(args) == 1 {
		fn, err := a.lookup(reg, args[0])
		if err != nil {
			return err
		}
		fns = []*clause.Function{fn}
	} else {
		fns = reg.Functions()
	}

	infos := make([]clause.FunctionInfo, len(fns))
	for i, fn := range fns {
		infos[i] = fn.Describe()
	}

	var v any = infos
	if len(args) == 1 {
		v = infos[0]
	}

	return a.render(v, func() {
		for i, info := range infos {
			if i > 0 {
				fmt.Fprintln(a.out)
			}
			a.describeTable(info)
		}
	})
}

func (a *app) describeTable(info clause.FunctionInfo) {
	title := info.Name
	if info.Scope != "" {
		title = info.Scope + "." + info.Name
	}
	ui.Header(a.out, title, a.cfg.NoColor)

	table := ui.NewTable(a.out, []string{"ARITY", "#", "GUARDS", "RELATION", "CATCH-ALL"}, &ui.TableOptions{NoColor: a.cfg.NoColor})
	for _, arity := range info.Arities {
		for i, c := range arity.Clauses {
			catchAll := ""
			if c.CatchAll {
				catchAll = "yes"
			}
			table.AddRow(strconv.Itoa(arity.Arity), strconv.Itoa(i+1), guardSummary(c.Guards), c.Relation, catchAll)
		}
	}
	table.Render()
}

func guardSummary(guards []clause.GuardInfo) string {
	parts := make([]string, len(guards))
	for i, g := range guards {
		parts[i] = g.Param + ": " + g.Guard
	}
	return strings.Join(parts, ", ")
}
