package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/clauses/internal/cli/config"
	"github.com/conduit-lang/clauses/internal/cli/ui"
	"github.com/conduit-lang/clauses/internal/rules"
	"github.com/conduit-lang/clauses/runtime/clause"
)

var errUnknownFunction = errors.New("unknown function")

// reportedError is an error whose message has already been written to the
// user. Execute does not print it again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

// app carries the state shared by the commands that work on a rule file
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	errOut io.Writer
}

// newApp loads the configuration and applies flag overrides
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := changedFlag(cmd, "config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if v, ok := changedFlag(cmd, "rules"); ok {
		cfg.Rules = v
	}
	if v, ok := changedFlag(cmd, "format"); ok {
		cfg.Format = v
	}
	if v, ok := changedFlag(cmd, "no-color"); ok {
		cfg.NoColor = v == "true"
	}
	if v, ok := changedFlag(cmd, "verbose"); ok && v == "true" {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: newLogger(cfg, cmd.ErrOrStderr()),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

// changedFlag returns the value of a flag set on the command line
func changedFlag(cmd *cobra.Command, name string) (string, bool) {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}

func newLogger(cfg *config.Config, w io.Writer) *zap.Logger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if cfg.Log.Development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(cfg.LogLevel()))
	return zap.New(core)
}

// load parses the rule file and installs it into a fresh registry. Rule
// errors are reported to the user before they are returned.
func (a *app) load() (*clause.Registry, error) {
	rs, err := rules.Load(a.cfg.Rules)
	if err == nil {
		reg := clause.NewRegistry(clause.WithLogger(a.logger))
		if err = rs.Install(reg); err == nil {
			a.logger.Debug("rules installed",
				zap.String("path", a.cfg.Rules),
				zap.Int("functions", reg.Len()))
			return reg, nil
		}
	}

	io.WriteString(a.errOut, ui.RulesError(err.Error(), a.cfg.NoColor))
	return nil, &reportedError{err: err}
}

// lookup resolves "name" or "scope.name" to a function, reporting unknown
// names with suggestions
func (a *app) lookup(reg *clause.Registry, name string) (*clause.Function, error) {
	scope, short := splitName(name)
	if fn, ok := reg.Scope(scope).Lookup(short); ok {
		return fn, nil
	}

	suggestions := ui.Suggest(name, functionNames(reg))
	io.WriteString(a.errOut, ui.FunctionNotFoundError(name, suggestions, a.cfg.NoColor))
	return nil, &reportedError{err: fmt.Errorf("%w: %s", errUnknownFunction, name)}
}

func splitName(name string) (scope, short string) {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func functionNames(reg *clause.Registry) []string {
	fns := reg.Functions()
	names := make([]string, 0, len(fns))
	for _, fn := range fns {
		names = append(names, fn.Key().String())
	}
	sort.Strings(names)
	return names
}
