package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/neptune-screen/internal/config"
	"github.com/muurk/neptune-screen/internal/discovery"
	"github.com/muurk/neptune-screen/internal/display"
	"github.com/muurk/neptune-screen/internal/logging"
	"github.com/muurk/neptune-screen/internal/moonraker"
	"github.com/muurk/neptune-screen/internal/navigation"
	"github.com/muurk/neptune-screen/internal/printer"
	"github.com/muurk/neptune-screen/internal/routes"
	"github.com/muurk/neptune-screen/internal/status"
	"github.com/muurk/neptune-screen/internal/ui"
	"github.com/muurk/neptune-screen/internal/urls"
	"github.com/muurk/neptune-screen/internal/views"
)

// run command flags
var (
	serialDevice  string
	baudRate      int
	moonrakerHost string
	moonrakerPort int
	discover      bool
	routesFile    string
	logLevel      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the touchscreen",
	Long: `Open the screen UART, connect to Moonraker and drive the screen until
interrupted.

Flags override the config file. The process exits with status 2 when the
serial link or the Moonraker connection is lost, so a supervisor can restart it.`,
	Example: `  # Stock Neptune 4 with Moonraker on the same board
  neptune-screen run

  # Screen on a USB adapter, Moonraker on another host
  neptune-screen run --device /dev/ttyUSB0 --host 192.168.1.40

  # Find Moonraker over mDNS
  neptune-screen run --discover --log-level debug`,
	RunE: runScreen,
}

func init() {
	runCmd.Flags().StringVar(&serialDevice, "device", display.DefaultDevice, "Screen serial device")
	runCmd.Flags().IntVar(&baudRate, "baud", display.DefaultBaudRate, "Screen baud rate")
	runCmd.Flags().StringVar(&moonrakerHost, "host", "localhost", "Moonraker host")
	runCmd.Flags().IntVar(&moonrakerPort, "port", moonraker.DefaultPort, "Moonraker port")
	runCmd.Flags().BoolVar(&discover, "discover", false, "Find Moonraker over mDNS instead of using --host")
	runCmd.Flags().StringVar(&routesFile, "routes", "", "Routing table file (default is the built-in Neptune 4 table)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Serial.Device = serialDevice
	}
	if flags.Changed("baud") {
		cfg.Serial.BaudRate = baudRate
	}
	if flags.Changed("host") {
		cfg.Moonraker.Host = moonrakerHost
	}
	if flags.Changed("port") {
		cfg.Moonraker.Port = moonrakerPort
	}
	if flags.Changed("discover") {
		cfg.Moonraker.Discover = discover
	}
	if flags.Changed("routes") {
		cfg.RoutesFile = routesFile
	}
}

func loadRoutes(path string) (*routes.Table, error) {
	if path == "" {
		return routes.DefaultTable()
	}
	return routes.LoadFile(path)
}

func runScreen(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	table, err := loadRoutes(cfg.RoutesFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Moonraker.Discover {
		scanner := discovery.NewScanner()
		scanner.Timeout = cfg.DiscoverTimeout()
		inst, err := scanner.FindFirst(ctx)
		if err != nil {
			return fmt.Errorf("moonraker discovery failed: %w", err)
		}
		logging.Info("Discovered moonraker", zap.String("instance", inst.String()))
		cfg.Moonraker.Host, cfg.Moonraker.Port = inst.IP, inst.Port
	}

	disp, err := display.Open(cfg.DisplayConfig())
	if err != nil {
		return err
	}
	defer func() { _ = disp.Close() }()

	ctl := printer.New(moonraker.NewClient(cfg.MoonrakerConfig()), status.NewStore())
	ctl.SetGCodeRoot(cfg.GCodeRoot)
	if err := ctl.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = ctl.Close() }()

	engine := navigation.New(cfg.EngineConfig(), disp, ctl)
	set := views.New(engine, ctl, cfg.ViewOptions())
	router, err := routes.NewRouter(table, set.Operations())
	if err != nil {
		return err
	}
	engine.Bind(router)

	logging.Info("Screen bridge started",
		zap.String("device", cfg.Serial.Device),
		zap.String("moonraker", cfg.MoonrakerConfig().URL()),
		zap.Int("routes", table.Len()),
	)

	err = engine.Startup(ctx, ctl.Ready, set.Home)
	if errors.Is(err, context.Canceled) {
		logging.Info("Shutting down")
		return nil
	}
	return err
}

var discoverTimeout int

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find Moonraker instances on the network",
	Long: `Browse for Moonraker over mDNS (_moonraker._tcp).

Moonraker only advertises itself when the [zeroconf] component is enabled
in moonraker.conf.`,
	Example: `  neptune-screen discover
  neptune-screen discover --timeout 10`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return err
	}
	defer logging.Sync()

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader(ui.NewHeader("Moonraker discovery", "neptune-screen discover",
		ui.Param{Key: "Service", Value: discovery.ServiceType + "." + discovery.ServiceDomain},
		ui.Param{Key: "Timeout", Value: strconv.Itoa(discoverTimeout) + "s"},
	))

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(discoverTimeout) * time.Second

	var found []*discovery.Instance
	err := p.RunWithSpinner(cmd.Context(), "Scanning for Moonraker...", func(ctx context.Context) error {
		var err error
		found, err = scanner.Scan(ctx)
		return err
	})
	if err != nil {
		p.PrintResult(ui.NewFailureResult("Scan failed", err))
		return err
	}

	if len(found) == 0 {
		p.PrintResult(ui.NewFailureResult("No Moonraker instances found", nil,
			"Enable the [zeroconf] component in moonraker.conf: "+urls.MoonrakerZeroconf,
			"Check that this machine is on the printer's network",
			"Try a longer --timeout",
			"Use 'neptune-screen run --host <ip>' to skip discovery",
		))
		return nil
	}

	result := ui.NewSuccessResult(fmt.Sprintf("Found %d instance(s)", len(found)))
	for _, inst := range found {
		result.AddDetail(inst.Name, inst.Address())
	}
	p.PrintResult(result)
	return nil
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Validate and print the routing table",
	Long: `Load the routing table, check every binding against the built-in view
operations and print it grouped by page.`,
	Example: `  neptune-screen routes
  neptune-screen routes --routes ./my_routes.yaml`,
	RunE: runRoutes,
}

func init() {
	routesCmd.Flags().StringVar(&routesFile, "routes", "", "Routing table file (default is the built-in Neptune 4 table)")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	path := routesFile
	if path == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		path = cfg.RoutesFile
	}

	table, err := loadRoutes(path)
	if err != nil {
		return err
	}

	// The views are never called here; they only provide the operation set.
	set := views.New(nil, nil, views.Options{})
	if err := routes.Validate(table, set.Operations()); err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	source := path
	if source == "" {
		source = "built-in"
	}
	p.PrintHeader(ui.NewHeader("Routing table", "neptune-screen routes",
		ui.Param{Key: "Source", Value: source},
		ui.Param{Key: "Bindings", Value: strconv.Itoa(table.Len())},
	))
	p.Println(ui.RenderRoutes(table))
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateDefault(configPath)
		if err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintResult(ui.NewSuccessResult("Config file created").AddDetail("Path", path))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}
