package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goastro/indigo/internal/config"
	"github.com/goastro/indigo/internal/discovery"
	"github.com/goastro/indigo/internal/model"
	"github.com/goastro/indigo/internal/protocol"
	"github.com/goastro/indigo/internal/tui"
)

// Command flags
var (
	serverName  string
	serverHost  string
	serverPort  int
	scanTimeout int
	waitTimeout int
	saveScan    bool
	exclusive   bool
)

func init() {
	// Common flags for server commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&serverName, "server", "", "Saved server name from the configuration file")
	rootCmd.PersistentFlags().StringVar(&serverHost, "host", "", "Server hostname or IP (skips the configuration file)")
	rootCmd.PersistentFlags().IntVar(&serverPort, "port", discovery.DefaultPort, "Server port")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(serversCmd)
}

// scanCmd discovers servers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for INDIGO servers on the network",
	Long: `Scan for INDIGO servers using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from INDIGO servers and displays
all discovered servers with their addresses and metadata.`,
	Example: `  # Scan for 10 seconds (default)
  indigo-cli scan

  # Quick 3-second scan
  indigo-cli scan --timeout 3

  # Save discovered servers to the configuration file
  indigo-cli scan --save`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
	scanCmd.Flags().BoolVar(&saveScan, "save", false, "Save discovered servers to the configuration file")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for INDIGO servers (timeout: %ds)...\n\n", scanTimeout)

	endpoints, err := discovery.Scan(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(endpoints) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the server is running and on the same network segment")
		fmt.Println("  - Check that the firewall allows mDNS (UDP port 5353)")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --host to specify the address manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(endpoints))

	for i, endpoint := range endpoints {
		fmt.Printf("%d. %s\n", i+1, endpoint.Name)
		fmt.Printf("   Host: %s:%d\n", endpoint.Host, endpoint.Port)
		if endpoint.Hostname != "" {
			fmt.Printf("   mDNS: %s\n", endpoint.Hostname)
		}
		if len(endpoint.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", endpoint.Metadata)
		}
		fmt.Println()
	}

	if saveScan {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		for _, endpoint := range endpoints {
			registry.SetServer(endpoint.Name, endpoint.Host, endpoint.Port)
			registry.UpdateServerLastSeen(endpoint.Name, endpoint.Host)
		}
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		fmt.Printf("Saved %d server(s) to the configuration file\n", len(endpoints))
	} else {
		fmt.Println("Use 'indigo-cli watch --host <address>' to monitor a server")
		fmt.Println("Use 'indigo-cli scan --save' to remember discovered servers")
	}

	return nil
}

// watchCmd runs the live property monitor
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor device properties live",
	Long: `Connect to one or more INDIGO servers and monitor device properties.

In a terminal this launches an interactive monitor; when output is
redirected, property changes are streamed as plain lines instead.

Without --host or --server, every saved server marked auto-connect is
used; if none is marked, all saved servers are used.`,
	Example: `  # Monitor a specific server
  indigo-cli watch --host 192.168.4.16

  # Monitor a saved server
  indigo-cli watch --server indigosky

  # Monitor every saved auto-connect server
  indigo-cli watch`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	client := model.New()

	servers, err := targetServers(client)
	if err != nil {
		return err
	}

	connected := 0
	for _, server := range servers {
		if err := server.Connect(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			continue
		}
		connected++
	}
	if connected == 0 {
		return fmt.Errorf("could not connect to any server")
	}
	defer func() {
		for _, server := range servers {
			server.Disconnect()
		}
	}()

	if tui.IsTerminal() {
		return tui.RunMonitor(client)
	}
	return streamChanges(client)
}

// streamChanges prints property traffic as plain lines until interrupted
func streamChanges(client *model.Client) error {
	client.AddListener(&model.Listener{
		DeviceAdded: func(d *model.Device) {
			fmt.Printf("device %s: added\n", d.Name())
		},
		DeviceRemoved: func(d *model.Device) {
			fmt.Printf("device %s: removed\n", d.Name())
		},
		PropertyAdded: func(p *model.Property) {
			fmt.Printf("%s.%s: defined [%s] state=%s\n", p.DeviceName(), p.Name(), p.Kind(), p.State())
		},
		PropertyUpdated: func(p *model.Property) {
			fmt.Printf("%s.%s: state=%s%s\n", p.DeviceName(), p.Name(), p.State(), itemSummary(p))
		},
		PropertyRemoved: func(p *model.Property) {
			fmt.Printf("%s.%s: deleted\n", p.DeviceName(), p.Name())
		},
		ServerMessage: func(s *model.Server, device, text string) {
			fmt.Printf("message from %s: %s\n", s.Name(), text)
		},
		ServerDisconnected: func(s *model.Server) {
			fmt.Printf("server %s: disconnected\n", s.Name())
		},
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}

func itemSummary(p *model.Property) string {
	summary := ""
	for _, item := range p.Items() {
		summary += fmt.Sprintf(" %s=%s", item.Name(), displayValue(item.Value()))
	}
	return summary
}

// getCmd prints device properties
var getCmd = &cobra.Command{
	Use:   "get <device> [property]",
	Short: "Print device properties",
	Long: `Connect to a server and print a device's properties and item values.

With only a device name, every property of the device is printed.
With a property name, only that property is printed.`,
	Example: `  # Print every property of the CCD Imager Simulator
  indigo-cli get "CCD Imager Simulator" --host 192.168.4.16

  # Print one property
  indigo-cli get "CCD Imager Simulator" CCD_EXPOSURE --host 192.168.4.16`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().IntVar(&waitTimeout, "wait", 5, "Seconds to wait for the server's definitions")
}

func runGet(cmd *cobra.Command, args []string) error {
	deviceName := args[0]
	propertyName := ""
	if len(args) == 2 {
		propertyName = args[1]
	}

	client, cleanup, err := connectOne()
	if err != nil {
		return err
	}
	defer cleanup()

	// Entity accessors do not lock, so every read of the mirrored tree
	// happens inside client.View while the receive loop is live
	if !awaitCondition(client, time.Duration(waitTimeout)*time.Second, func() bool {
		device := client.Device(deviceName)
		if device == nil {
			return false
		}
		found := false
		client.View(func() {
			if propertyName == "" {
				found = len(device.Properties()) > 0
			} else {
				found = device.Property(propertyName) != nil
			}
		})
		return found
	}) {
		if propertyName == "" {
			return fmt.Errorf("device %q not reported within %ds", deviceName, waitTimeout)
		}
		return fmt.Errorf("property %q of device %q not reported within %ds", propertyName, deviceName, waitTimeout)
	}

	device := client.Device(deviceName)
	if device == nil {
		return fmt.Errorf("device %q disappeared before it could be printed", deviceName)
	}

	client.View(func() {
		if propertyName != "" {
			if property := device.Property(propertyName); property != nil {
				printProperty(property)
			}
			return
		}
		for _, group := range device.Groups() {
			fmt.Printf("%s:\n", group.Name())
			for _, property := range group.Properties() {
				printProperty(property)
			}
		}
	})
	return nil
}

// printProperty renders one property with its items. Callers read the model
// inside client.View.
func printProperty(p *model.Property) {
	fmt.Printf("  %s [%s] %s state=%s\n", p.Name(), p.Kind(), p.Permission(), p.State())
	for _, item := range p.Items() {
		fmt.Printf("    %s = %s\n", item.Name(), displayValue(item.Value()))
	}
}

// setCmd changes a property item value
var setCmd = &cobra.Command{
	Use:   "set <device> <property> <item> <value>",
	Short: "Change a property item value",
	Long: `Connect to a server and request a property change.

The value is typed by the property's kind: switches take on/off or
true/false, numbers take a decimal value, text takes the literal string.
The command waits for the server to confirm the change.

For switch properties ruled OneOfMany or AtMostOne, use --exclusive to
select one item and clear its siblings in the same request.`,
	Example: `  # Start a 5 second exposure
  indigo-cli set "CCD Imager Simulator" CCD_EXPOSURE EXPOSURE 5 --host 192.168.4.16

  # Connect the mount (exclusive switch selection)
  indigo-cli set Mount CONNECTION CONNECTED on --exclusive --host 192.168.4.16`,
	Args: cobra.ExactArgs(4),
	RunE: runSet,
}

func init() {
	setCmd.Flags().BoolVar(&exclusive, "exclusive", false, "Clear sibling switch items in the same request")
	setCmd.Flags().IntVar(&waitTimeout, "wait", 5, "Seconds to wait for definitions and confirmation")
}

func runSet(cmd *cobra.Command, args []string) error {
	deviceName, propertyName, itemName, rawValue := args[0], args[1], args[2], args[3]

	client, cleanup, err := connectOne()
	if err != nil {
		return err
	}
	defer cleanup()

	// Entity accessors do not lock, so every read of the mirrored tree
	// happens inside client.View while the receive loop is live
	if !awaitCondition(client, time.Duration(waitTimeout)*time.Second, func() bool {
		device := client.Device(deviceName)
		if device == nil {
			return false
		}
		found := false
		client.View(func() { found = device.Property(propertyName) != nil })
		return found
	}) {
		return fmt.Errorf("property %q of device %q not reported within %ds", propertyName, deviceName, waitTimeout)
	}

	device := client.Device(deviceName)
	if device == nil {
		return fmt.Errorf("device %q disappeared before the change was sent", deviceName)
	}

	var (
		property *model.Property
		kind     protocol.Kind
		hasItem  bool
	)
	client.View(func() {
		property = device.Property(propertyName)
		if property != nil {
			kind = property.Kind()
			hasItem = property.Item(itemName) != nil
		}
	})
	if property == nil {
		return fmt.Errorf("property %q of device %q disappeared before the change was sent", propertyName, deviceName)
	}
	if !kind.Writable() {
		return fmt.Errorf("%s properties cannot be changed", kind)
	}
	if !hasItem {
		return fmt.Errorf("property %q has no item %q", propertyName, itemName)
	}

	value, err := typedValue(kind, rawValue)
	if err != nil {
		return err
	}

	// Watch for the server's confirming update before sending
	updated := make(chan struct{}, 1)
	listener := &model.Listener{
		PropertyUpdated: func(p *model.Property) {
			if p.DeviceName() == deviceName && p.Name() == propertyName {
				select {
				case updated <- struct{}{}:
				default:
				}
			}
		},
	}
	client.AddListener(listener)
	defer client.RemoveListener(listener)

	if exclusive {
		property.SetExclusiveValue(itemName, protocol.AsBool(value))
	} else {
		property.SetSingleValue(itemName, value)
	}

	select {
	case <-updated:
	case <-time.After(time.Duration(waitTimeout) * time.Second):
		fmt.Printf("No confirmation within %ds; the server may still be working\n", waitTimeout)
	}

	client.View(func() { printProperty(property) })
	return nil
}

// typedValue converts the command-line string by the property's kind
func typedValue(kind protocol.Kind, raw string) (any, error) {
	switch kind {
	case protocol.KindSwitch:
		switch raw {
		case "on", "On", "true":
			return true, nil
		case "off", "Off", "false":
			return false, nil
		default:
			return nil, fmt.Errorf("invalid switch value %q (use on/off)", raw)
		}
	case protocol.KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value %q", raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}

// serversCmd manages saved servers
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage saved servers",
	Long:  `List, add, and remove saved server entries in the configuration file.`,
	RunE:  runServersList,
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved servers",
	RunE:  runServersList,
}

var serversAddCmd = &cobra.Command{
	Use:   "add <name> <host> [port]",
	Short: "Save a server endpoint",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runServersAdd,
}

var serversRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget a saved server",
	Args:  cobra.ExactArgs(1),
	RunE:  runServersRemove,
}

var serversAutoCmd = &cobra.Command{
	Use:   "auto <name> <on|off>",
	Short: "Mark a saved server for automatic connection",
	Args:  cobra.ExactArgs(2),
	RunE:  runServersAuto,
}

func init() {
	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversAddCmd)
	serversCmd.AddCommand(serversRemoveCmd)
	serversCmd.AddCommand(serversAutoCmd)
}

func runServersList(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	names := registry.ServerNames()
	if len(names) == 0 {
		fmt.Println("No saved servers. Use 'indigo-cli servers add' or 'indigo-cli scan --save'.")
		return nil
	}

	for _, name := range names {
		server := registry.GetServer(name)
		marker := " "
		if server.AutoConnect {
			marker = "*"
		}
		fmt.Printf("%s %s  %s:%d\n", marker, name, server.Host, server.Port)
	}
	fmt.Println("\n* = auto-connect")
	return nil
}

func runServersAdd(cmd *cobra.Command, args []string) error {
	name, host := args[0], args[1]
	port := discovery.DefaultPort
	if len(args) == 3 {
		p, err := strconv.Atoi(args[2])
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid port %q", args[2])
		}
		port = p
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	registry.SetServer(name, host, port)
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Saved server %s (%s:%d)\n", name, host, port)
	return nil
}

func runServersRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if registry.GetServer(name) == nil {
		return fmt.Errorf("no saved server named %q", name)
	}
	registry.RemoveServer(name)
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Removed server %s\n", name)
	return nil
}

func runServersAuto(cmd *cobra.Command, args []string) error {
	name, mode := args[0], args[1]
	var auto bool
	switch mode {
	case "on":
		auto = true
	case "off":
		auto = false
	default:
		return fmt.Errorf("invalid mode %q (use on/off)", mode)
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if registry.GetServer(name) == nil {
		return fmt.Errorf("no saved server named %q", name)
	}
	registry.SetAutoConnect(name, auto)
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Auto-connect for %s: %s\n", name, mode)
	return nil
}

// Helpers

// targetServers registers the servers the command should talk to:
// the --host flag, the --server name, or the saved server list.
func targetServers(client *model.Client) ([]*model.Server, error) {
	if serverHost != "" {
		name := serverName
		if name == "" {
			name = serverHost
		}
		return []*model.Server{client.AddServer(name, serverHost, serverPort)}, nil
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if serverName != "" {
		saved := registry.GetServer(serverName)
		if saved == nil {
			return nil, fmt.Errorf("no saved server named %q (use --host, or 'indigo-cli servers add')", serverName)
		}
		return []*model.Server{client.AddServer(serverName, saved.Host, saved.Port)}, nil
	}

	names := registry.AutoConnectServers()
	if len(names) == 0 {
		names = registry.ServerNames()
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no servers configured (use --host, or 'indigo-cli servers add')")
	}

	servers := make([]*model.Server, 0, len(names))
	for _, name := range names {
		saved := registry.GetServer(name)
		servers = append(servers, client.AddServer(name, saved.Host, saved.Port))
	}
	return servers, nil
}

// connectOne connects to exactly one server for the get/set commands
func connectOne() (*model.Client, func(), error) {
	client := model.New()
	servers, err := targetServers(client)
	if err != nil {
		return nil, nil, err
	}
	if len(servers) != 1 {
		return nil, nil, fmt.Errorf("this command needs exactly one server; use --host or --server")
	}

	server := servers[0]
	if err := server.Connect(context.Background()); err != nil {
		return nil, nil, err
	}
	return client, server.Disconnect, nil
}

// awaitCondition polls the model until the condition holds or the timeout expires
func awaitCondition(client *model.Client, timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return cond()
}

// displayValue renders an item value for terminal output
func displayValue(value any) string {
	if b, ok := value.(bool); ok {
		if b {
			return "On"
		}
		return "Off"
	}
	return protocol.AsString(value)
}
