// clockctl talks to a pico-clockgen board over its serial command port.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/joesugar/raspberrypi-pico-cy22150/command"
)

var (
	portName string
	baud     int
	seq      int
	rawJSON  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clockctl",
		Short: "Control a CY22150 clock generator over its serial command port",
	}
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "/dev/ttyACM0", "serial device of the clock generator")
	rootCmd.PersistentFlags().IntVarP(&baud, "baud", "b", 115200, "line rate")
	rootCmd.PersistentFlags().IntVar(&seq, "seq", 1, "command number echoed back in the response")
	rootCmd.PersistentFlags().BoolVar(&rawJSON, "json", false, "print the raw response line")

	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(getCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "clockctl:", err)
		os.Exit(1)
	}
}

func setCmd() *cobra.Command {
	var freq uint32
	var enable, disable bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Request an output frequency and/or output state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if enable && disable {
				return errors.New("--enable and --disable are mutually exclusive")
			}
			req := command.Request{Seq: seq}
			if cmd.Flags().Changed("freq") {
				req.FreqHz = freq
				req.HasFreq = true
			}
			if enable || disable {
				req.HasEnable = true
				req.Enable = enable
			}
			if !req.HasFreq && !req.HasEnable {
				return errors.New("nothing to set; use --freq, --enable or --disable")
			}
			return transact(req)
		},
	}
	cmd.Flags().Uint32Var(&freq, "freq", 0, "target frequency in Hz")
	cmd.Flags().BoolVar(&enable, "enable", false, "enable the clock output")
	cmd.Flags().BoolVar(&disable, "disable", false, "disable the clock output")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Report the realized frequency and output state",
		RunE: func(*cobra.Command, []string) error {
			// A bare sequence number recommits current state and acks it.
			return transact(command.Request{Seq: seq})
		},
	}
}

// response mirrors the firmware's single-line JSON reply.
type response struct {
	CommandNumber int    `json:"command_number"`
	Frequency     uint32 `json:"frequency"`
	EnableOut     bool   `json:"enable_out"`
	Error         string `json:"error"`
}

func transact(req command.Request) error {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", portName, err)
	}
	defer port.Close()
	if err := port.SetReadTimeout(2 * time.Second); err != nil {
		return err
	}

	if _, err := port.Write([]byte(command.EncodeRequest(req) + "\n")); err != nil {
		return err
	}
	line, err := bufio.NewReader(port).ReadString('\n')
	if err != nil {
		return fmt.Errorf("no response: %w", err)
	}
	line = strings.TrimSpace(line)

	if rawJSON {
		fmt.Println(line)
		return nil
	}

	var resp response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return fmt.Errorf("unparseable response %q: %w", line, err)
	}
	if resp.Error != "" {
		return fmt.Errorf("device: %s", resp.Error)
	}
	state := "off"
	if resp.EnableOut {
		state = "on"
	}
	fmt.Printf("frequency: %d Hz, output: %s\n", resp.Frequency, state)
	return nil
}
