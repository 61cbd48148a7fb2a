package main

import (
	"encoding/json"
	"fmt"
	"os"

	"pcpaneld/internal/config"
	"pcpaneld/internal/ipc"
)

func printUsage() {
	fmt.Println("pcpanelctl - control-plane client for pcpaneld")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  pcpanelctl [-socket PATH] <command> [args...]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  status")
	fmt.Println("  apps")
	fmt.Println("  devices")
	fmt.Println("  outputs")
	fmt.Println("  inputs")
	fmt.Println("  config")
	fmt.Println("  reload")
	fmt.Println("  shutdown")
	fmt.Println("  assign-dial <knobN|sliderN> <default_output|default_input|focused_app|app> [binary] [name] [flatpak_id]")
	fmt.Println("  assign-mute <knobN> <target...>       (same target syntax as assign-dial)")
	fmt.Println("  assign-media <knobN> <play_pause|play|pause|next|previous|stop>")
	fmt.Println("  assign-exec <knobN> <shell command>")
	fmt.Println("  unassign <knobN|sliderN>")
}

func main() {
	args := os.Args[1:]
	socketPath := config.DefaultSocketPath()

	if len(args) >= 2 && (args[0] == "-socket" || args[0] == "--socket") {
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	client, err := ipc.Dial(socketPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer client.Close()

	var (
		out  any
		rerr error
	)

	switch args[0] {
	case "status":
		out, rerr = client.GetStatus()
	case "apps":
		out, rerr = client.ListApps()
	case "devices":
		out, rerr = client.ListDevices()
	case "outputs":
		out, rerr = client.ListOutputs()
	case "inputs":
		out, rerr = client.ListInputs()
	case "config":
		out, rerr = client.GetConfig()
	case "reload":
		out, rerr = client.ReloadConfig()
	case "shutdown":
		out, rerr = client.Shutdown()

	case "assign-dial":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "error: assign-dial requires <control> <target>")
			os.Exit(1)
		}
		out, rerr = client.AssignDial(args[1], args[2], argOr(args, 3), argOr(args, 4), argOr(args, 5))

	case "assign-mute":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "error: assign-mute requires <control> <target>")
			os.Exit(1)
		}
		out, rerr = client.AssignButtonMute(args[1], args[2], argOr(args, 3), argOr(args, 4), argOr(args, 5))

	case "assign-media":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "error: assign-media requires <control> <media-command>")
			os.Exit(1)
		}
		out, rerr = client.AssignButtonMedia(args[1], args[2])

	case "assign-exec":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "error: assign-exec requires <control> <shell command>")
			os.Exit(1)
		}
		out, rerr = client.AssignButtonExec(args[1], args[2])

	case "unassign":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "error: unassign requires <control>")
			os.Exit(1)
		}
		out, rerr = client.Unassign(args[1])

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if rerr != nil {
		fmt.Fprintln(os.Stderr, "error:", rerr)
		os.Exit(1)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: marshal response:", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}

func argOr(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
