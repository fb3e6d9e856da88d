/*
Package cmd implements the a2a-calculator command line: the A2A invoker, the
MCP calculator tool server, the calculator agent server and a few helpers.
*/
package cmd

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"github.com/theapemachine/a2a-calculator/pkg/logging"
)

/*
Embed a mini filesystem into the binary to hold the default config file.
It is written to the home directory of the user running the service, which
allows an operator to override it.
*/
//go:embed cfg/*
var embedded embed.FS

var (
	projectName = "a2a-calculator"
	cfgFile     string
	logLevel    string

	// cfg is read once in initConfig and passed down explicitly.
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   projectName,
		Short: "A2A calculator agent, its MCP tool server and an A2A invoker",
		Long:  longRoot,
	}
)

/*
Execute runs the root command with a context that is canceled on SIGINT or
SIGTERM, so servers can shut down gracefully.
*/
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnFinalize(logging.Close)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yml",
		"config file (default is $HOME/."+projectName+"/config.yml)",
	)

	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"log level (debug, info, warn, error)",
	)
}

/*
initConfig loads .env, writes the default config file if needed, reads it
and resolves the immutable configuration.
*/
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to load .env", "error", err)
	}

	if err := writeConfig(); err != nil {
		log.Fatal("failed to write config", "error", err)
	}

	home, _ := os.UserHomeDir()

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(filepath.Join(home, "."+projectName))
	viper.AddConfigPath(".")

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Warn("no config file read, using defaults", "error", err)
	}

	setLogLevel()
	cfg = config.Load(viper.GetViper())
}

func setLogLevel() {
	level := logLevel

	if level == "" {
		level = viper.GetString("log.level")
	}

	if err := logging.Init(logging.Config{
		Level:        level,
		File:         viper.GetString("log.file"),
		ReportCaller: viper.GetBool("log.caller"),
	}); err != nil {
		log.Warn("failed to configure logging", "error", err)
	}
}

/*
writeConfig writes the embedded default config to the user's home directory
unless a file is already there.
*/
func writeConfig() error {
	home, err := os.UserHomeDir()

	if err != nil {
		return fmt.Errorf("failed to find home directory: %w", err)
	}

	configDir := filepath.Join(home, "."+projectName)

	if err := os.MkdirAll(configDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fullPath := filepath.Join(configDir, cfgFile)

	if CheckFileExists(fullPath) {
		return nil
	}

	fh, err := embedded.Open("cfg/" + cfgFile)

	if err != nil {
		// Custom config names have no embedded default.
		log.Debug("no embedded config", "file", cfgFile)
		return nil
	}

	defer fh.Close()

	var buf bytes.Buffer

	if _, err := io.Copy(&buf, fh); err != nil {
		return fmt.Errorf("failed to read embedded config file: %w", err)
	}

	if err := os.WriteFile(fullPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Info("wrote config file", "path", fullPath)

	return nil
}

func CheckFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, os.ErrNotExist)
}

var longRoot = `
a2a-calculator is a small Agent-to-Agent (A2A) system: an MCP server exposing
calculator tools, an LLM agent that uses them behind an A2A JSON-RPC endpoint,
and a client that discovers the agent through its card and sends it prompts.
`
