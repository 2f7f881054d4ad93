package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/ctxstudio/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `tree:
  format: raw
  paths:
    excluded_directories: [.git, __pycache__, venv, node_modules, .idea, .vscode]
build:
  format: raw
  clipboard: false
  summary: true
  tokens:
    enabled: false
    model: gpt-4o
  paths:
    excluded_directories: [.git, __pycache__, venv, node_modules, .idea, .vscode]
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested
// target and returns the destination path.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", workingDirectoryError)
			}
			workingDirectory = currentDirectory
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", homeError)
		}
		globalDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if makeDirectoryError := os.MkdirAll(globalDirectory, 0o755); makeDirectoryError != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", globalDirectory, makeDirectoryError)
		}
		destinationPath = filepath.Join(globalDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf("unsupported configuration target %q", target)
	}

	if !options.Force {
		if _, statError := os.Stat(destinationPath); statError == nil {
			return "", fmt.Errorf("configuration %s already exists (use --force to overwrite)", destinationPath)
		}
	}
	if writeError := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o644); writeError != nil {
		return "", fmt.Errorf("write configuration %s: %w", destinationPath, writeError)
	}
	return destinationPath, nil
}
