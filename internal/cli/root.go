package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/soundchunk/internal/config"
	"github.com/matzehuels/soundchunk/pkg/chunk"
	graphio "github.com/matzehuels/soundchunk/pkg/io"
)

// loadConfig runs before every command. It reads --config, or the first
// file found on the search path, and applies the configured log level.
// The logger is attached to the command context.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configPath != "" {
		path = c.configPath
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.Config = cfg

	if cfg.LogLevel != "" {
		level, err := charmlog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		c.SetLogLevel(level)
	}
	if path != "" {
		c.Logger.Debug("config loaded", "path", path)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// readGraph loads a graph from path, or from stdin when path is "-".
// Stdin is read as JSON unless format says otherwise.
func readGraph(path, format string) (chunk.Elements, error) {
	if path != "-" {
		if format == "" {
			return graphio.Import(path)
		}
		f, err := os.Open(path)
		if err != nil {
			return chunk.Elements{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return readGraphFrom(f, format)
	}
	return readGraphFrom(os.Stdin, format)
}

// loadOrSeed reads the graph at path, or returns the seed graph when path
// is empty.
func (c *CLI) loadOrSeed(path, format string) (chunk.Elements, error) {
	if path == "" {
		c.Logger.Debug("no input, using seed graph")
		return chunk.Seed(), nil
	}
	return readGraph(path, format)
}

func readGraphFrom(r io.Reader, format string) (chunk.Elements, error) {
	f := graphio.FormatJSON
	if format != "" {
		var err error
		if f, err = graphio.ParseFormat(format); err != nil {
			return chunk.Elements{}, err
		}
	}
	return graphio.Read(r, f)
}

// writeOutput writes data to path, or to the CLI output when path is ""
// or "-".
func (c *CLI) writeOutput(path string, data []byte) error {
	if toStdout(path) {
		_, err := c.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// toStdout reports whether output goes to the CLI output stream.
func toStdout(path string) bool {
	return path == "" || path == "-"
}

// baseName strips directory and extension for titles.
func baseName(path string) string {
	if path == "-" {
		return "stdin"
	}
	name := path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
