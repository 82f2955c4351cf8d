package cli

import (
	"io"

	"github.com/aretw0/wayfinder/internal/config"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	FlowPath  string
	SessionID string
	Start     string
	Watch     bool
	JSON      bool
	Fresh     bool
	Debug     bool
	NoBanner  bool

	Config config.Config

	// In and Out default to the process stdio.
	In  io.Reader
	Out io.Writer
}
