package sample

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kisy/appmole/model"
)

const DefaultNettopPath = "/usr/bin/nettop"

// ErrNoOutput is returned when the sampling tool ran but printed nothing.
var ErrNoOutput = errors.New("sampler produced no output")

// Sampler produces one per-process snapshot per call.
type Sampler interface {
	Sample(ctx context.Context) ([]model.RawProcessSample, error)
}

type SamplerFunc func(ctx context.Context) ([]model.RawProcessSample, error)

func (f SamplerFunc) Sample(ctx context.Context) ([]model.RawProcessSample, error) {
	return f(ctx)
}

// NettopSampler runs `nettop -P -n -l 1 -x` once per call.
type NettopSampler struct {
	Path    string
	Timeout time.Duration
}

func NewNettopSampler(path string, timeout time.Duration) *NettopSampler {
	if path == "" {
		path = DefaultNettopPath
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NettopSampler{Path: path, Timeout: timeout}
}

func (n *NettopSampler) Sample(ctx context.Context) ([]model.RawProcessSample, error) {
	ctx, cancel := context.WithTimeout(ctx, n.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, n.Path, "-P", "-n", "-l", "1", "-x")
	cmd.Env = append(os.Environ(), "LC_ALL=en_US.UTF-8", "NSUnbufferedIO=YES")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w", n.Path, err)
	}
	if stdout.Len() == 0 {
		return nil, ErrNoOutput
	}
	return ParseOutput(stdout.String()), nil
}
