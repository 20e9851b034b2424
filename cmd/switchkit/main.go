package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/application/services"
	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/infrastructure/config"
	"github.com/carlosrabelo/switchkit/core/infrastructure/logging"
	"github.com/carlosrabelo/switchkit/core/infrastructure/transport"
	"github.com/carlosrabelo/switchkit/core/platform"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const defaultConfigFile = "config.yaml"

// app holds everything a command needs once flags are parsed.
type app struct {
	configFile string
	target     string
	verbosity  int
	write      bool

	cfg       *config.Config
	log       *zap.Logger
	registry  *platform.Registry
	pool      *transport.Pool
	connector services.Connector
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "switchkit",
		Short:         "Inventory and configure MLX and SLX-OS switches",
		Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", defaultConfigFile, "YAML configuration file")
	flags.StringVarP(&a.target, "target", "t", "", "Switch target (must match a target in YAML)")
	flags.IntVarP(&a.verbosity, "verbose", "v", 0, "Verbosity level: 0=none, 1=debug logs, 2=raw switch output, 3=debug+raw output")
	flags.BoolVarP(&a.write, "write", "w", false, "Apply changes (disables sandbox mode)")

	root.AddCommand(
		newPortChannelsCmd(a),
		newAdminStateCmd(a),
		newDescriptionCmd(a),
		newAccessVLANCmd(a),
		newDetectCmd(a),
		newBGPCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if a.verbosity < 0 || a.verbosity > 3 {
		return fmt.Errorf("--verbose must be 0, 1, 2, or 3")
	}
	log, err := logging.New(a.verbosity)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.log = log

	path, err := resolveConfigPath(a.configFile, runtime.GOOS)
	if err != nil {
		return err
	}
	log.Debug("configuration file", zap.String("path", path))

	cfg, err := config.Load(path, a.target, a.write, a.verbosity, log)
	if err != nil {
		return err
	}
	table, err := cfg.MIBTable()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.registry = platform.NewRegistry(log, table)
	if a.connector == nil {
		a.pool = transport.NewPool(log)
		a.connector = a.pool
	}
	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.CloseAll()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) service(opts ...services.Option) *services.InventoryApplicationService {
	opts = append([]services.Option{services.WithWorkers(a.cfg.Workers)}, opts...)
	return services.NewInventoryApplicationService(a.connector, a.registry, a.log, opts...)
}

// switches returns the switch selected by --target, or every switch.
func (a *app) switches() ([]entities.SwitchConfig, error) {
	if a.target == "" {
		return a.cfg.Switches, nil
	}
	sw, err := a.cfg.Switch(a.target)
	if err != nil {
		return nil, err
	}
	return []entities.SwitchConfig{sw}, nil
}

// targetSwitch returns the switch selected by --target, which is required.
func (a *app) targetSwitch() (entities.SwitchConfig, error) {
	if a.target == "" {
		return entities.SwitchConfig{}, errors.New("the --target parameter is required")
	}
	return a.cfg.Switch(a.target)
}

// resolveConfigPath searches the user and system configuration
// directories when the default file name was not overridden.
func resolveConfigPath(configFile, goos string) (string, error) {
	if configFile != defaultConfigFile {
		return configFile, nil
	}

	possiblePaths := []string{filepath.Join(".", defaultConfigFile)}
	switch goos {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			possiblePaths = append(possiblePaths, filepath.Join(appData, "switchkit", defaultConfigFile))
		}
		if programData := os.Getenv("ProgramData"); programData != "" {
			possiblePaths = append(possiblePaths, filepath.Join(programData, "switchkit", defaultConfigFile))
		}
	default:
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			possiblePaths = append(possiblePaths, filepath.Join(userConfigDir, "switchkit", defaultConfigFile))
		}
		possiblePaths = append(possiblePaths, filepath.Join("/etc", "switchkit", defaultConfigFile))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no %s found in %v", defaultConfigFile, possiblePaths)
}
