package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/quarterlog/quarterlog/internal/config"
	"github.com/quarterlog/quarterlog/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`

	Run      RunCmd      `cmd:"" help:"Start the quarterlog TUI (default)" default:"1"`
	Start    StartCmd    `cmd:"start" help:"Start a workblock and follow it in the terminal"`
	Stop     StopCmd     `cmd:"stop" help:"Complete the active workblock early"`
	Cancel   CancelCmd   `cmd:"cancel" help:"Cancel the active workblock"`
	Status   StatusCmd   `cmd:"status" help:"Show the active workblock and interval countdown"`
	Submit   SubmitCmd   `cmd:"submit" help:"Record an entry for an interval" hidden:""`
	Away     AwayCmd     `cmd:"away" help:"Mark an interval as away immediately" hidden:""`
	Day      DayCmd      `cmd:"day" help:"Show the merged view of a day"`
	Archive  ArchiveCmd  `cmd:"archive" help:"Archive a day's workblocks"`
	Archives ArchivesCmd `cmd:"archives" help:"List daily archives"`
	Serve    ServeCmd    `cmd:"serve" help:"Serve the TUI over SSH"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// AfterApply initializes logging after CLI parsing and applies settings
func (c *CLI) AfterApply() error {
	// Precedence: CLI flags > env vars > settings.json > defaults.
	// Only apply a setting if the flag is at its default and the env
	// var is not set.
	if c.settings != nil {
		if c.MaxLogFiles == 1000 {
			if _, hasEnv := os.LookupEnv("QUARTERLOG_MAX_LOG_FILES"); !hasEnv {
				c.MaxLogFiles = c.settings.LogFileLimit()
			}
		}

		if !c.Debug {
			if _, hasEnv := os.LookupEnv("QUARTERLOG_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}
	}

	// Initialize logging first and get the log file path
	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Export debug settings so child processes append to the same file
	if c.Debug || c.DebugFile != "" {
		os.Setenv("QUARTERLOG_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("QUARTERLOG_DEBUG_FILE", logFilePath)
		}
	}
	if c.MaxLogFiles != 1000 {
		os.Setenv("QUARTERLOG_MAX_LOG_FILES", fmt.Sprintf("%d", c.MaxLogFiles))
	}

	// Create container AFTER logging is initialized so the GORM logger
	// never sees a nil logging.Logger
	settings := c.settings
	if settings == nil {
		settings = &config.Settings{}
	}
	container, err := NewContainer(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container

	return nil
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
