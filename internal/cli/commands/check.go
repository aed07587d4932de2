package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/clauses/internal/cli/ui"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the rule file",
		Long: `Load the rule file and register every clause, reporting malformed guards,
unknown parameters and clauses declared after a catch-all.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	reg, err := a.load()
	if err != nil {
		return err
	}

	clauses, catchAlls := 0, 0
	for _, fn := range reg.Functions() {
		for _, arity := range fn.Arities() {
			for _, c := range fn.Clauses(arity) {
				clauses++
				if c.CatchAll {
					catchAlls++
				}
			}
		}
	}

	ui.WriteSuccess(a.out, fmt.Sprintf("%s is valid", a.cfg.Rules), a.cfg.NoColor)
	summary := ui.NewKeyValueTable(a.out, a.cfg.NoColor)
	summary.AddRow("functions", strconv.Itoa(reg.Len()))
	summary.AddRow("clauses", strconv.Itoa(clauses))
	summary.AddRow("catch-alls", strconv.Itoa(catchAlls))
	summary.Render()
	return nil
}
