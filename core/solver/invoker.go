package solver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dineshvn/metroplan/core/logger"
	"github.com/dineshvn/metroplan/core/model"
)

// Pipeline stage names, in execution order.
const (
	StageEnsureModel   = "ENSURE_MODEL"
	StageGenerateInput = "GENERATE_INPUT"
	StageSolve         = "SOLVE"
	StageReadResults   = "READ_RESULTS"
)

// Failure reports an aborted pipeline invocation. Any stage failure discards
// partial state; the caller falls back to the synthetic generator.
type Failure struct {
	Stage  string
	Stderr string
	Err    error
}

func (e *Failure) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("solver stage %s: %v: %s", e.Stage, e.Err, e.Stderr)
	}
	return fmt.Sprintf("solver stage %s: %v", e.Stage, e.Err)
}

func (e *Failure) Unwrap() error { return e.Err }

// Exchange reads the JSON documents the pipeline leaves behind for a
// planning date.
type Exchange interface {
	ReadInput(planningDate string) (*model.InputData, error)
	ReadSolution(planningDate string) (*model.ScheduleSnapshot, error)
}

// Config locates the optimization pipeline on disk.
type Config struct {
	Python              string `json:"python"`
	WorkDir             string `json:"workDir"`
	ModelArtifact       string `json:"modelArtifact"`
	TrainScript         string `json:"trainScript"`
	InputScript         string `json:"inputScript"`
	SolveScript         string `json:"solveScript"`
	StageTimeoutSeconds int    `json:"stageTimeoutSeconds"`
}

// StageTimeout returns the per-stage process timeout.
func (c Config) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// SetDefaults fills unset fields with the pipeline's conventional layout.
func (c *Config) SetDefaults() {
	if c.Python == "" {
		c.Python = "python3"
	}
	if c.ModelArtifact == "" {
		c.ModelArtifact = "anomaly_model.joblib"
	}
	if c.TrainScript == "" {
		c.TrainScript = "00_train_anomaly_model.py"
	}
	if c.InputScript == "" {
		c.InputScript = "01_generate_advanced_input.py"
	}
	if c.SolveScript == "" {
		c.SolveScript = "02_solve_advanced_schedule.py"
	}
	if c.StageTimeoutSeconds <= 0 {
		c.StageTimeoutSeconds = 120
	}
}

// Invoker drives the external optimization pipeline as a sequence of
// processes. The invocation is one unit of work: the first failing stage
// aborts the rest.
type Invoker struct {
	cfg      Config
	runner   ProcessRunner
	exchange Exchange
	log      logger.Logger
}

// NewInvoker wires the invoker. The exchange is used by READ_RESULTS to load
// the documents the solve stage wrote.
func NewInvoker(cfg Config, runner ProcessRunner, exchange Exchange, log logger.Logger) *Invoker {
	cfg.SetDefaults()
	return &Invoker{cfg: cfg, runner: runner, exchange: exchange, log: log}
}

// Solve runs the full pipeline for the planning date and returns the parsed
// input and solution documents.
func (inv *Invoker) Solve(ctx context.Context, planningDate string) (*model.InputData, *model.ScheduleSnapshot, error) {
	if err := inv.ensureModel(ctx); err != nil {
		return nil, nil, err
	}
	if err := inv.runStage(ctx, StageGenerateInput, inv.cfg.InputScript, planningDate); err != nil {
		return nil, nil, err
	}
	if err := inv.runStage(ctx, StageSolve, inv.cfg.SolveScript, planningDate); err != nil {
		return nil, nil, err
	}

	input, err := inv.exchange.ReadInput(planningDate)
	if err != nil {
		return nil, nil, &Failure{Stage: StageReadResults, Err: err}
	}
	solution, err := inv.exchange.ReadSolution(planningDate)
	if err != nil {
		return nil, nil, &Failure{Stage: StageReadResults, Err: err}
	}
	return input, solution, nil
}

// ensureModel trains the anomaly model unless the pretrained artifact is
// already present in the pipeline workdir.
func (inv *Invoker) ensureModel(ctx context.Context) error {
	artifact := filepath.Join(inv.cfg.WorkDir, inv.cfg.ModelArtifact)
	if _, err := os.Stat(artifact); err == nil {
		inv.log.Debugf("model artifact %s present, skipping %s", artifact, StageEnsureModel)
		return nil
	}
	return inv.runStage(ctx, StageEnsureModel, inv.cfg.TrainScript)
}

func (inv *Invoker) runStage(ctx context.Context, stage, script string, args ...string) error {
	inv.log.Infof("running pipeline stage %s (%s)", stage, script)
	out, err := inv.runner.Run(ctx, inv.cfg.Python, append([]string{script}, args...), inv.cfg.WorkDir, inv.cfg.StageTimeout())
	if err != nil {
		return &Failure{Stage: stage, Stderr: out.Stderr, Err: err}
	}
	return nil
}
