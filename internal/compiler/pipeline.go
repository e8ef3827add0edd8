// Package compiler threads a parsed program through every phase named in
// §2's data-flow line: semantic analysis, HM inference, exhaustiveness,
// monomorphization, IR lowering, optimization, and a chosen back end.
//
// Grounded on the teacher's internal/pipeline.Pipeline: Pipeline, New, and
// Run below are carried over near-verbatim from there (same fields, same
// continue-past-errors loop) — a slice of Processor stages run in order over
// a shared *PipelineContext, continuing on error so a later stage (e.g. the
// CLI's diagnostic printer) sees every phase's findings rather than just the
// first failure (internal/backend's ExecutionProcessor.Process follows the
// same "continue, don't abort" shape). PipelineContext and Processor
// themselves have no teacher definition to carry over (only call sites like
// backend.ExecutionProcessor.Process(ctx *pipeline.PipelineContext) survive
// retrieval) so their fields are designed fresh here, sized to exactly what
// this spec's phases read and write.
package compiler

import (
	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/codegen/script"
	"github.com/luminalang/lumina/internal/codegen/stack"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/exhaustive"
	"github.com/luminalang/lumina/internal/infer"
	"github.com/luminalang/lumina/internal/ir"
	"github.com/luminalang/lumina/internal/mono"
	"github.com/luminalang/lumina/internal/optimize"
	"github.com/luminalang/lumina/internal/semantic"
)

// Mode selects how much of the pipeline a Run should drive, matching the
// two CLI-facing modes named in §6.
type Mode int

const (
	// ModeCheck runs parse + both analysis phases; no emission (§6 `check`).
	ModeCheck Mode = iota
	// ModeCompile runs the full pipeline through the chosen back end (§6 `compile`).
	ModeCompile
)

// Backend selects which of the two back ends ModeCompile emits through.
type Backend int

const (
	BackendScript Backend = iota
	BackendStack
)

// PipelineContext is threaded through every Processor. Errors accumulates
// across every stage that ran; stages that structurally require a prior
// stage's output (monomorphization needs infer.Result, IR lowering needs
// the monomorphized program, ...) skip their own work when that input is
// nil rather than aborting the whole run, so a caller printing ctx.Errors
// still sees every diagnostic every stage that *could* run produced.
type PipelineContext struct {
	FilePath string
	Program  *ast.Program
	Mode     Mode
	Backend  Backend

	ScriptOptions script.Options
	InferOptions  infer.Options // zero value => infer.DefaultOptions()

	Errors *diagnostics.Bag

	InferResult *infer.Result
	Mono        *mono.Result
	IR          *ir.Program
	Optimized   *ir.Program

	ScriptResult *script.Result
	StackCode    string
}

// NewContext builds the initial context for one compile/check run.
func NewContext(filePath string, prog *ast.Program, mode Mode) *PipelineContext {
	return &PipelineContext{
		FilePath: filePath,
		Program:  prog,
		Mode:     mode,
		Errors:   diagnostics.NewBag(),
	}
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline runs an ordered sequence of Processors over one PipelineContext.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from an explicit stage list, mirroring the
// teacher's pipeline.New(processors ...Processor) constructor.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order, continuing past stages that append
// diagnostics (§7 propagation policy: "continue on error to collect
// diagnostics from all stages").
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}

// CheckPipeline runs exactly the stages `check` needs (§6: "parse + both
// analysis phases; no emission").
func CheckPipeline() *Pipeline {
	return New(
		&SemanticProcessor{},
		&InferProcessor{},
		&ExhaustiveProcessor{},
	)
}

// CompilePipeline runs every phase through the requested back end (§6
// `compile`).
func CompilePipeline() *Pipeline {
	return New(
		&SemanticProcessor{},
		&InferProcessor{},
		&ExhaustiveProcessor{},
		&MonomorphizeProcessor{},
		&LowerProcessor{},
		&OptimizeProcessor{},
		&BackendProcessor{},
	)
}

// Compile is the single-call convenience entry point: build the program's
// context, run the mode-appropriate pipeline, and return it for the caller
// to inspect diagnostics and (for ModeCompile) emitted code.
func Compile(filePath string, prog *ast.Program, mode Mode, backend Backend, scriptOpts script.Options) *PipelineContext {
	return CompileWithOptions(filePath, prog, mode, backend, scriptOpts, infer.Options{})
}

// CompileWithOptions is Compile plus an explicit infer.Options override —
// the hook the CLI's `.luminarc.yaml` wrapper-set extension plugs into.
func CompileWithOptions(filePath string, prog *ast.Program, mode Mode, backend Backend, scriptOpts script.Options, inferOpts infer.Options) *PipelineContext {
	ctx := NewContext(filePath, prog, mode)
	ctx.Backend = backend
	ctx.ScriptOptions = scriptOpts
	ctx.InferOptions = inferOpts
	var pipe *Pipeline
	if mode == ModeCheck {
		pipe = CheckPipeline()
	} else {
		pipe = CompilePipeline()
	}
	return pipe.Run(ctx)
}

// HasFatalErrors reports whether an error-severity diagnostic survived
// after HM + semantic analysis, the sole gate the CLI `compile` command
// honors per §7's propagation policy ("(b) any error-severity diagnostic
// after HM + semantic gates the CLI compile command").
func (ctx *PipelineContext) HasFatalErrors() bool {
	return ctx.Errors.HasErrors()
}

// SemanticProcessor runs the second-opinion structural checker (§4.4).
type SemanticProcessor struct{}

func (p *SemanticProcessor) Process(ctx *PipelineContext) *PipelineContext {
	semantic.CheckProgram(ctx.Errors, ctx.Program)
	return ctx
}

// InferProcessor runs the HM inferencer (§4.2).
type InferProcessor struct{}

func (p *InferProcessor) Process(ctx *PipelineContext) *PipelineContext {
	opts := ctx.InferOptions
	if opts.Wrappers == nil {
		opts = infer.DefaultOptions()
	}
	res := infer.InferProgram(ctx.Program, opts)
	ctx.InferResult = res
	ctx.Errors.Merge(res.Diagnostics)
	return ctx
}

// ExhaustiveProcessor walks every match in the program and checks sum-type
// coverage (§4.3), using the enum knowledge InferProcessor collected.
type ExhaustiveProcessor struct{}

func (p *ExhaustiveProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.InferResult == nil {
		return ctx
	}
	variants := exhaustive.BuildEnumVariants(ctx.InferResult.EnumOf)
	walker := &exhaustiveWalker{bag: ctx.Errors, infer: ctx.InferResult, variants: variants}
	for _, stmt := range ctx.Program.Statements {
		walker.walkStmt(stmt)
	}
	return ctx
}

// MonomorphizeProcessor specializes generic functions/types per call site
// (§4.5).
type MonomorphizeProcessor struct{}

func (p *MonomorphizeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.InferResult == nil {
		return ctx
	}
	result := mono.Monomorphize(ctx.Program, ctx.InferResult)
	ctx.Mono = result
	ctx.Errors.Merge(result.Diagnostics)
	return ctx
}

// LowerProcessor lowers the monomorphized AST to IR (§4.6).
type LowerProcessor struct{}

func (p *LowerProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Mono == nil {
		return ctx
	}
	ctx.IR = ir.Lower(ctx.Mono.Program)
	return ctx
}

// OptimizeProcessor runs the IR optimizer to a fixed point (§4.7).
type OptimizeProcessor struct{}

func (p *OptimizeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.IR == nil {
		return ctx
	}
	ctx.Optimized = optimize.Run(ctx.IR)
	return ctx
}

// BackendProcessor emits through whichever back end ctx.Backend names.
type BackendProcessor struct{}

func (p *BackendProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Optimized == nil {
		return ctx
	}
	switch ctx.Backend {
	case BackendStack:
		ctx.StackCode = stack.Emit(ctx.Optimized, stack.Options{ExportMain: true})
	default:
		opts := ctx.ScriptOptions
		if opts.Target == "" {
			opts.Target = config.TargetESM
		}
		if opts.SourceFile == "" {
			opts.SourceFile = ctx.FilePath
		}
		ctx.ScriptResult = script.Emit(ctx.Optimized, opts)
	}
	return ctx
}
