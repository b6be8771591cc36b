// Package cli implements the voximg command-line interface.
//
// The CLI loads a volumetric image (DICOM file, DICOM series directory
// or raw volume with sidecar), runs it through a YAML-configured
// preprocessing pipeline and writes the result. Commands:
//   - apply: run a pipeline over an input volume
//   - info: print shape, dtype, value statistics and metadata
//   - preview: export scaled PNG slices for quick inspection
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// CLI bundles the commands around a shared logger.
type CLI struct {
	logger *log.Logger
}

// New creates a CLI writing log output to w at the given level.
func New(w io.Writer, level LogLevel) *CLI {
	return &CLI{logger: newLogger(w, level)}
}

// SetLogLevel adjusts the logger's filter level.
func (c *CLI) SetLogLevel(level LogLevel) {
	c.logger.SetLevel(level)
}

// RootCommand builds the cobra command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "voximg",
		Short:         "Preprocess volumetric medical images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.previewCommand())
	return root
}
