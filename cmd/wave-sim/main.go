// Wave-sim simulates a networked LED painter.
//
// It serves the painter's params object at /api (GET returns it, POST
// replaces it), pushes every applied object to websocket watchers at
// /api/ws, and can advertise itself over mDNS so wave-cfg finds it. It
// exists for developing and testing editors without hardware.
//
// Usage:
//
//	wave-sim serve [flags]
//
// See 'wave-sim serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/painter"
	"github.com/muurk/wave/internal/simulator"
	"github.com/muurk/wave/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wave-sim",
	Short: "Wave painter simulator",
	Long: `A stand-in for a networked LED painter.

Serves the params JSON API and a websocket feed of applied params, and
optionally advertises itself over mDNS.

Note: to edit params, use the separate 'wave-cfg' utility.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	certPath    string
	keyPath     string
	host        string
	port        int
	path        string
	instance    string
	advertise   bool
	initialPath string
	logLevel    string
	logJSON     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated painter",
	Long: `Start the simulated painter and serve until interrupted.

The painter starts with the factory defaults unless --initial names a
JSON file holding a params object. Provide --cert and --key together to
serve HTTPS.`,
	Example: `  # Serve on :8080 and advertise over mDNS
  wave-sim serve --advertise

  # Start from saved params with debug logging
  wave-sim serve --initial studio.json --log-level debug

  # Serve HTTPS
  wave-sim serve --cert cert.pem --key key.pem --port 8443`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", simulator.DefaultPort, "Listen port")
	serveCmd.Flags().StringVar(&path, "path", "/api", "Path of the params resource")
	serveCmd.Flags().StringVar(&instance, "instance", "wave-sim", "mDNS instance name")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise over mDNS")
	serveCmd.Flags().StringVar(&initialPath, "initial", "", "JSON file with the starting params")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&logJSON, "log-json", false, "Log as JSON")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeWithOptions(logging.Options{Level: logLevel, JSON: logJSON}); err != nil {
		return err
	}

	if (certPath == "") != (keyPath == "") {
		return fmt.Errorf("both --cert and --key must be provided together, or neither")
	}
	for _, f := range []string{certPath, keyPath} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", f)
		}
	}

	config := &simulator.Config{
		Host:      host,
		Port:      port,
		Path:      path,
		Advertise: advertise,
		Instance:  instance,
		CertPath:  certPath,
		KeyPath:   keyPath,
	}

	if initialPath != "" {
		data, err := os.ReadFile(initialPath)
		if err != nil {
			return fmt.Errorf("failed to read initial params: %w", err)
		}
		initial, err := painter.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", initialPath, err)
		}
		config.Initial = &initial
	}

	srv := simulator.New(config)
	logging.Debug("Simulator configured", zap.String("id", srv.ID()), zap.Bool("advertise", advertise))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("wave-sim " + version.Full())
	},
}
