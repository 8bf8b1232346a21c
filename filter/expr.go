// Package filter selects batch conversion jobs with expr-lang expressions.
//
// Expressions see the job fields directly (Name, Source, Preset, Output,
// Tags, Options, IsURL) plus helpers such as hasTag("x") and option("key").
// The case-insensitive string helpers are containsFold, hasPrefix and
// hasSuffix; expr's own contains, startsWith and endsWith operators remain
// available in infix form:
//
//	hasTag("invoice") and IsURL and not containsFold(Name, "draft")
//	Name startsWith "report-"
package filter

import (
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/gopdfctl/gopdf"
)

// DefaultCacheSize is the number of compiled expressions kept by NewCompiler
const DefaultCacheSize = 32

// Filter is a compiled job selection expression
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache sets the number of compiled expressions kept. Zero disables caching.
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		} else {
			c.cache = nil
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// Compiler compiles expressions and caches the resulting programs.
// It is safe for concurrent use.
type Compiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// NewCompiler creates a Compiler with a DefaultCacheSize cache
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helperFuncs: createHelperFunctions(),
		cache:       newLRUCache(DefaultCacheSize),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile compiles an expression that must evaluate to a boolean
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Message: ErrEmptyExpression.Error(), Err: ErrEmptyExpression}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached.(*Filter), nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(), // job fields are bound at run time
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, err)
	}

	filter := &Filter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Size returns the number of cached filters
func (c *Compiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Clear removes all cached filters
func (c *Compiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Match reports whether job satisfies the filter
func (f *Filter) Match(job gopdf.Job) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(f.helpers, job))
	if err != nil {
		return false, &EvaluationError{Job: job.Name, Expression: f.expression, Err: err}
	}

	// guaranteed by expr.AsBool
	return result.(bool), nil
}

// Select returns the jobs matching the filter, keeping their order. A nil
// filter selects every job.
func (f *Filter) Select(jobs []gopdf.Job) ([]gopdf.Job, error) {
	if f == nil {
		return jobs, nil
	}

	selected := make([]gopdf.Job, 0, len(jobs))
	for _, job := range jobs {
		ok, err := f.Match(job)
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, job)
		}
	}
	return selected, nil
}

// Expression returns the original expression
func (f *Filter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)
	return funcs
}

// addHelperFunctions adds the job independent helpers to env. Names must not
// collide with expr operators (contains, startsWith, endsWith, matches);
// lower and upper come from expr's builtins.
func addHelperFunctions(env map[string]any) {
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffix"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
}

// createRuntimeEnvironment binds job to a copy of the compiler's helpers,
// custom functions included
func createRuntimeEnvironment(helpers map[string]any, job gopdf.Job) map[string]any {
	env := make(map[string]any, len(helpers)+10)
	maps.Copy(env, helpers)

	env["hasTag"] = createHasTagFunc(job.Tags)
	env["option"] = createOptionFunc(job.Options)
	env["hasOption"] = createHasOptionFunc(job.Options)

	env["Name"] = job.Name
	env["Source"] = job.Source
	env["Preset"] = job.Preset
	env["Output"] = job.Output
	env["Tags"] = job.Tags
	env["Options"] = job.Options
	env["IsURL"] = isURL(job.Source)

	return env
}

func isURL(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func createHasTagFunc(tags []string) func(string) bool {
	lowerTags := make([]string, len(tags))
	for i, tag := range tags {
		lowerTags[i] = strings.ToLower(tag)
	}
	return func(tag string) bool {
		return slices.Contains(lowerTags, strings.ToLower(tag))
	}
}

func createOptionFunc(options map[string]any) func(string) any {
	return func(key string) any {
		return options[key]
	}
}

func createHasOptionFunc(options map[string]any) func(string) bool {
	return func(key string) bool {
		_, ok := options[key]
		return ok
	}
}
