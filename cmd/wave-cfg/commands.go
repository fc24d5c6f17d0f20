package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/wave/internal/colorconv"
	"github.com/muurk/wave/internal/config"
	"github.com/muurk/wave/internal/device"
	"github.com/muurk/wave/internal/discovery"
	"github.com/muurk/wave/internal/editor"
	"github.com/muurk/wave/internal/form"
	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/painter"
	"github.com/muurk/wave/internal/paramsync"
	"github.com/muurk/wave/internal/ui"
)

// Global flags
var (
	deviceFlag  string
	configPath  string
	logLevel    string
	httpTimeout time.Duration

	registry *config.Registry
)

// Command flags
var (
	outputFormat string
	syncMode     string
	scanTimeout  time.Duration
	remember     bool
	noVerify     bool
	retries      int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "", "Painter URL, host:port or remembered device name (skips discovery)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $WAVE_CONFIG or ~/.config/wave/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.PersistentFlags().DurationVar(&httpTimeout, "timeout", 10*time.Second, "HTTP request timeout")
	rootCmd.Flags().StringVar(&syncMode, "mode", "", "Sync mode: live or manual (default from config)")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(colorCmd)
	rootCmd.AddCommand(addColorCmd)
	rootCmd.AddCommand(removeColorCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads the config file and initializes logging
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		registry, err = config.LoadFile(configPath)
	} else {
		registry, err = config.LoadRegistry()
	}
	if err != nil {
		return err
	}

	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LogLevelEnvVar)
	}
	if level == "" {
		level = registry.Preferences.LogLevel
	}

	opts := logging.Options{Level: level}
	if level != "" && os.Getenv(logging.LogFileEnvVar) == "" && isEditor(cmd) {
		// the editor owns the terminal
		if dir, err := config.GetConfigDir(); err == nil {
			if err := os.MkdirAll(dir, 0o755); err == nil {
				opts.Output = filepath.Join(dir, "wave.log")
			}
		}
	}
	return logging.InitializeWithOptions(opts)
}

func isEditor(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == editCmd
}

func saveRegistry() error {
	if configPath != "" {
		return registry.SaveFile(configPath)
	}
	return registry.Save()
}

// signalContext is canceled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newClient(endpoint string) (*device.Client, error) {
	client, err := device.NewClientWithURL(endpoint)
	if err != nil {
		return nil, err
	}
	client.SetTimeout(httpTimeout)
	return client, nil
}

func newEngine(endpoint string, mode paramsync.Mode) (*paramsync.Engine, *device.Client, error) {
	client, err := newClient(endpoint)
	if err != nil {
		return nil, nil, err
	}
	engine := paramsync.New(client, paramsync.Config{
		Mode:     mode,
		Endpoint: client.Endpoint,
		Painters: registry.PainterOptions(),
	})
	return engine, client, nil
}

// editCmd launches the interactive editor
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit painter params interactively",
	Long: `Open the terminal editor for a painter.

Without --device the editor first searches the network for painters.
In live mode every edit is written immediately. In manual mode edits
are kept locally until 's' saves them; 'u' discards them.`,
	Example: `  # Pick a painter from the network
  wave-cfg edit

  # Edit a known painter, writing every change as it is made
  wave-cfg edit --device 192.168.1.20:8080 --mode live

  # Use a device remembered by 'wave-cfg scan --remember'
  wave-cfg --device studio`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&syncMode, "mode", "", "Sync mode: live or manual (default from config)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	modeText := syncMode
	if modeText == "" {
		modeText = registry.Preferences.Mode
	}
	if modeText == "" {
		modeText = string(paramsync.ModeManual)
	}
	mode, err := paramsync.ParseMode(modeText)
	if err != nil {
		return err
	}

	endpoint := ""
	if deviceFlag != "" || registry.Preferences.Endpoint != "" {
		if endpoint, err = registry.ResolveEndpoint(deviceFlag); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	logging.Info("Starting editor", zap.String("endpoint", endpoint), zap.String("mode", string(mode)))
	err = editor.Run(ctx, editor.Options{
		Endpoint: endpoint,
		NewEngine: func(endpoint string) (*paramsync.Engine, error) {
			engine, _, err := newEngine(endpoint, mode)
			return engine, err
		},
		ScanTimeout: time.Duration(registry.Preferences.DiscoverTimeout) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	return nil
}

// showCmd prints the current params
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show painter params",
	Long: `Read the params object from a painter and print it.

The detailed format also lists validation warnings, such as a palette
painter with no secondary colors.`,
	Example: `  # Show params with auto-discovery
  wave-cfg show

  # Compact one-line output
  wave-cfg show --device 192.168.1.20:8080 --format compact

  # Raw JSON for scripting
  wave-cfg show --device studio --format json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	endpoint, err := getEndpoint(cmd.Context())
	if err != nil {
		return err
	}
	client, err := newClient(endpoint)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	params, err := client.GetParams(ctx)
	if err != nil {
		printFailure("Could not read params", err)
		return fmt.Errorf("failed to get params: %w", err)
	}

	out := ui.NewPrinter(cmd.OutOrStdout())
	switch outputFormat {
	case "compact":
		out.Println(params.FormatCompact())
	case "json":
		data, err := json.MarshalIndent(params, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		out.Println(string(data))
	case "detailed":
		out.PrintHeader("Painter params", "wave-cfg show", ui.Detail{Key: "Endpoint", Value: client.Endpoint})
		out.Println(params.FormatDetailed(registry.PainterOptions()))
		out.Println("  Palette: " + ui.Palette(params.SecondaryColors))
	default:
		return fmt.Errorf("unknown format %q (want detailed, compact or json)", outputFormat)
	}
	return nil
}

// setCmd writes one scalar field or color channel
var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set one field",
	Long: `Read the painter's params, change one field and write the whole object back.

Paths:
  painter, global_brightness, speed, fade, bidirectional
  color, color.r, color.g, color.b
  secondary_colors[N], secondary_colors[N].r|g|b

Color paths also accept color text such as #ff8800 or hsl(30,100%,50%).
Channel values must be integers within 0-255.`,
	Example: `  wave-cfg set global_brightness 0.8 --device studio
  wave-cfg set painter line --device studio
  wave-cfg set 'secondary_colors[1].g' 200 --device studio`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyEdit(cmd, fmt.Sprintf("Set %s", args[0]), func(fc *form.Controller) error {
			return fc.SetFieldText(args[0], args[1])
		})
	},
}

// colorCmd writes one color from text
var colorCmd = &cobra.Command{
	Use:   "color <path> <text>",
	Short: "Set a color from text",
	Long: `Set the primary color or one secondary color from color text.

Accepted forms: #rgb, #rrggbb, rgb(r,g,b), hsv(h,s%,v%), hsl(h,s%,l%).`,
	Example: `  wave-cfg color color '#ff8800' --device studio
  wave-cfg color 'secondary_colors[0]' 'hsv(200, 80%, 100%)' --device studio`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyEdit(cmd, fmt.Sprintf("Set %s", args[0]), func(fc *form.Controller) error {
			return fc.SetColorText(args[0], args[1])
		})
	},
}

// addColorCmd appends a secondary color
var addColorCmd = &cobra.Command{
	Use:   "add-color [text]",
	Short: "Append a secondary color",
	Long:  `Append a secondary color. Without text the new entry is black.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyEdit(cmd, "Append color", func(fc *form.Controller) error {
			if len(args) == 0 {
				fc.AppendColor()
				return nil
			}
			// validate before appending so a typo leaves the palette alone
			if _, err := colorconv.ToColor(args[0]); err != nil {
				return err
			}
			idx := fc.AppendColor()
			return fc.SetColorText(form.ColorPath(idx), args[0])
		})
	},
}

// removeColorCmd removes a secondary color
var removeColorCmd = &cobra.Command{
	Use:   "remove-color <index>",
	Short: "Remove a secondary color",
	Long:  `Remove the secondary color at index. Later colors shift down by one.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}
		return applyEdit(cmd, fmt.Sprintf("Remove color %d", index), func(fc *form.Controller) error {
			return fc.RemoveColorAt(index)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{setCmd, colorCmd, addColorCmd, removeColorCmd} {
		c.Flags().BoolVar(&noVerify, "no-verify", false, "Skip reading the params back after the write")
		c.Flags().IntVar(&retries, "retries", 2, "Number of extra verification reads")
	}
}

// applyEdit mounts a manual-mode engine, applies edit to its form and
// saves the result.
func applyEdit(cmd *cobra.Command, title string, edit func(*form.Controller) error) error {
	endpoint, err := getEndpoint(cmd.Context())
	if err != nil {
		return err
	}
	engine, client, err := newEngine(endpoint, paramsync.ModeManual)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	if err := engine.Mount(ctx); err != nil {
		printFailure("Could not read params", err)
		return err
	}
	fc, err := engine.Form()
	if err != nil {
		return err
	}
	if err := edit(fc); err != nil {
		return err
	}
	params := fc.Value()

	if err := engine.Save(ctx); err != nil {
		printFailure(title+" failed", err)
		return fmt.Errorf("write failed: %w", err)
	}

	out := ui.NewPrinter(cmd.OutOrStdout())
	details := []ui.Detail{
		{Key: "Endpoint", Value: client.Endpoint},
		{Key: "Params", Value: params.Summary()},
	}

	if noVerify {
		out.PrintSuccess(title+" (not verified)", details...)
		return nil
	}

	opts := device.DefaultVerificationOptions()
	opts.MaxRetries = retries
	result := client.Verify(ctx, params, opts)
	if !result.Success {
		printFailure(title+" not confirmed", result.Error, result.Mismatches...)
		return fmt.Errorf("verification failed after %d attempt(s)", result.Attempts)
	}

	if warnings := painter.Validate(params, registry.PainterOptions()); len(warnings) > 0 {
		out.PrintWarning(title+" written with warnings", ui.Detail{Key: "Warnings", Value: painter.FormatWarnings(warnings)})
		return nil
	}
	out.PrintSuccess(title, details...)
	return nil
}

func printFailure(title string, err error, tips ...string) {
	out := ui.NewPrinter(os.Stderr)
	out.PrintError(title, err, tips...)

	var devErr *device.DeviceError
	if errors.As(err, &devErr) {
		out.Println(device.GetTroubleshootingHint(err))
	}
}

// scanCmd discovers painters on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for painters on the network",
	Long: `Browse mDNS for painters advertising ` + discovery.ServiceType + `.

With --remember every painter found is stored in the config file under
its instance name, so it can be passed to --device later.`,
	Example: `  wave-cfg scan
  wave-cfg scan --timeout 10s --remember`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Scan timeout (default from config)")
	scanCmd.Flags().BoolVar(&remember, "remember", false, "Store found painters in the config file")
}

func runScan(cmd *cobra.Command, args []string) error {
	timeout := scanTimeout
	if timeout == 0 {
		timeout = time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
	}

	out := ui.NewPrinter(cmd.OutOrStdout())
	out.Printf("Scanning for painters (timeout: %s)...\n\n", timeout)

	ctx, cancel := signalContext()
	defer cancel()

	devices, err := discovery.Scan(ctx, timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		out.PrintWarning("No painters found",
			ui.Detail{Key: "Service", Value: discovery.ServiceType},
			ui.Detail{Key: "Hint", Value: "use --device to give the URL directly"},
		)
		return nil
	}

	out.Printf("Found %d painter(s):\n\n", len(devices))
	for i, d := range devices {
		out.Printf("%d. %s\n", i+1, d.Instance)
		out.Printf("   URL:  %s\n", d.ParamsURL())
		out.Printf("   Host: %s\n", d.Hostname)
		if d.ID != "" {
			out.Printf("   ID:   %s\n", d.ID)
		}
		out.Println("")
		if remember {
			registry.RememberDevice(d.Instance, d.ParamsURL(), d.ID)
		}
	}

	if remember {
		if err := saveRegistry(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		out.Println("Saved. Use 'wave-cfg --device <name>' to open one.")
	}
	return nil
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List remembered painters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := ui.NewPrinter(cmd.OutOrStdout())
		names := registry.DeviceNames()
		if len(names) == 0 {
			out.Println("No remembered painters. Run 'wave-cfg scan --remember'.")
			return nil
		}
		for _, name := range names {
			d := registry.GetDevice(name)
			line := fmt.Sprintf("%-20s %s", name, d.URL)
			if !d.LastSeen.IsZero() {
				line += "  (seen " + d.LastSeen.Format(time.RFC3339) + ")"
			}
			out.Println(line)
		}
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <name>",
	Short: "Forget a remembered painter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !registry.ForgetDevice(args[0]) {
			return fmt.Errorf("no remembered painter named %q", args[0])
		}
		return saveRegistry()
	},
}

// watchCmd streams params as the painter applies them
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print params every time the painter applies them",
	Long: `Connect to the painter's websocket and print each params object it applies,
including writes made by other editors. Stops on Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := getEndpoint(cmd.Context())
		if err != nil {
			return err
		}
		client, err := newClient(endpoint)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		out := ui.NewPrinter(cmd.OutOrStdout())
		out.Printf("Watching %s (Ctrl+C to stop)\n", client.Endpoint)
		return client.Watch(ctx, func(p painter.Params) {
			out.Printf("%s  %s\n", time.Now().Format("15:04:05"), p.FormatCompact())
		})
	},
}

// getEndpoint resolves --device, then the configured default, then
// falls back to discovery when exactly one painter answers.
func getEndpoint(ctx context.Context) (string, error) {
	if deviceFlag != "" || registry.Preferences.Endpoint != "" {
		return registry.ResolveEndpoint(deviceFlag)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(os.Stderr, "No device specified, attempting auto-discovery...")
	devices, err := discovery.Scan(ctx, time.Duration(registry.Preferences.DiscoverTimeout)*time.Second)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	switch len(devices) {
	case 0:
		return "", fmt.Errorf("no painters found. Use --device to specify one")
	case 1:
		d := devices[0]
		fmt.Fprintf(os.Stderr, "Found painter: %s\n\n", d)
		return d.ParamsURL(), nil
	}

	fmt.Fprintf(os.Stderr, "Found %d painters:\n", len(devices))
	for i, d := range devices {
		fmt.Fprintf(os.Stderr, "%d. %s\n", i+1, d)
	}
	return "", fmt.Errorf("multiple painters found. Use --device to specify which one")
}
