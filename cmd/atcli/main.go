// Command atcli is an interactive demo session over a real serial
// port.
//
// atclient.Client doesn't do its own byte-level framing: a production
// host pairs it with its own reader that splits "+TAG: ..." response
// lines and URCs off the wire. This binary supplies the smallest
// adapter that can demo the client end to end, a line reader that
// classifies each line as a URC by its leading "+UMWI" tag or as a
// response to the outstanding command otherwise.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"atgo/atclient"
	"atgo/atcmd"
	"atgo/fixture"
	"atgo/serialio"
	"atgo/spsc"
)

var (
	device = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud   = flag.Int("baud", 115200, "Baud rate")
	mode   = flag.String("mode", "blocking", "Dispatch mode: blocking, nonblocking, or bounded")
)

func main() {
	flag.Parse()

	fmt.Println("atcli - AT command/response client demo")
	fmt.Println("========================================")

	cfg := serialio.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Opening %s at %d baud...\n", cfg.Device, cfg.Baud)
	tx, err := serialio.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open serial port: %v\n", err)
		os.Exit(1)
	}
	defer tx.Close()

	dispatchMode, err := parseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resQ := spsc.NewResponseQueue(4)
	urcQ := spsc.NewURCQueue(4)
	comQ := spsc.NewCommandQueue(4)

	client := atclient.New(tx, serialio.NewWallClockTimer(), resQ.Consumer(), urcQ.Consumer(), comQ.Producer(), atclient.DefaultConfig(dispatchMode))
	client.SetLogger(standardLogger())

	go runIngress(tx, resQ.Producer(), urcQ.Producer())

	urc := fixture.Urc{}
	fmt.Println("Connected. Type 'help' for available commands, 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if v, ok := client.CheckURC(urc); ok {
			fmt.Printf("URC: %#v\n", v)
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "cfun":
			runSend(client, fixture.SetModuleFunctionality{Fun: fixture.APM, Rst: resetMode(fixture.DontReset)})

		case "cun":
			runSend(client, fixture.QueryCUN{Fun: fixture.APM, Rst: resetMode(fixture.DontReset)})

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", parts[0])
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func resetMode(r fixture.ResetMode) *fixture.ResetMode { return &r }

func parseMode(s string) (atclient.Mode, error) {
	switch s {
	case "blocking":
		return atclient.Blocking, nil
	case "nonblocking":
		return atclient.NonBlocking, nil
	case "bounded":
		return atclient.BoundedTimeout, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want blocking, nonblocking, or bounded)", s)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  cfun           - send +CFUN (set module functionality)")
	fmt.Println("  cun            - send +CUN (query, exercises mixed-order parsing)")
	fmt.Println("  help           - show this help message")
	fmt.Println("  quit/exit/q    - exit the program")
	fmt.Println()
}

func runSend(client *atclient.Client, cmd atcmd.Cmd) {
	resp, err := client.Send(cmd)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Printf("response: %#v\n", resp)
}

func standardLogger() *log.Logger { return log.New(os.Stderr, "atcli: ", log.LstdFlags) }

// runIngress is the minimal line-based adapter described in this
// file's doc comment: every line off the wire is classified as a URC
// by its leading tag, otherwise handed to the response queue as-is.
// It runs until the port is closed.
func runIngress(tx *serialio.SerialTransport, resP spsc.ResponseProducer, urcP spsc.URCProducer) {
	scanner := bufio.NewScanner(tx.Reader())
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(string(line)), "+UMWI") {
			urcP.Enqueue(spsc.NewPayload(line))
			continue
		}
		resP.Enqueue(spsc.OkResponse(spsc.NewPayload(line)))
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		standardLogger().Printf("ingress: read error: %v", err)
	}
}
