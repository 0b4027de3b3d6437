// ABOUTME: Remote commands for controlling and monitoring another MicAmp
// ABOUTME: Plays a monitor stream locally or sends control changes
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/micamp/micamp-go/internal/client"
	"github.com/micamp/micamp-go/internal/discovery"
	"github.com/micamp/micamp-go/internal/protocol"
	"github.com/micamp/micamp-go/pkg/audio/device"
	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Monitor or control a MicAmp over the network",
	Long: `Connect to the monitor of a running MicAmp. The URL may be omitted when
exactly one instance answers on the local network.`,
}

var remoteListenCmd = &cobra.Command{
	Use:   "listen [url]",
	Short: "Play a remote monitor stream",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := resolveMonitor(args)
		if err != nil {
			return err
		}

		c := client.NewClient(client.Config{URL: url, Debug: verbose})
		if err := c.Connect(); err != nil {
			return err
		}
		defer c.Close()

		dec, err := client.NewDecoder(c.Hello.Format)
		if err != nil {
			return err
		}
		defer dec.Close()

		out, release, err := openPlayback(c.Hello.Format.SampleRate)
		if err != nil {
			return err
		}
		defer release()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for {
			select {
			case chunk := <-c.AudioChunks:
				samples, err := dec.Decode(chunk.Data)
				if err != nil {
					log.Printf("Decode error: %v", err)
					continue
				}
				if _, err := out.Write(samples); err != nil {
					return fmt.Errorf("playback failed: %w", err)
				}
			case s := <-c.States:
				log.Printf("State: preset=%s volume=%.1f running=%v recording=%v", s.Preset, s.Volume, s.Running, s.Recording)
			case ev := <-c.Events:
				logEvent(ev)
			case <-c.Done():
				return fmt.Errorf("monitor connection lost")
			case <-ctx.Done():
				return nil
			}
		}
	},
}

var remoteSetCmd = &cobra.Command{
	Use:   "set [url]",
	Short: "Change settings of a running MicAmp",
	Example: `  micamp remote set --volume 2
  micamp remote set --effect delay --enable --param time=0.25 --param mix=0.4
  micamp remote set --order noise_gate,eq,reverb --record`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := controlFromFlags(cmd)
		if err != nil {
			return err
		}

		url, err := resolveMonitor(args)
		if err != nil {
			return err
		}
		c := client.NewClient(client.Config{URL: url, Debug: verbose})
		if err := c.Connect(); err != nil {
			return err
		}
		defer c.Close()

		// The greeting state arrives first, the reply follows it
		select {
		case <-c.States:
		case <-c.Done():
			return fmt.Errorf("monitor connection lost")
		}
		if err := c.SendControl(ctl); err != nil {
			return err
		}

		timeout := time.After(2 * time.Second)
		for {
			select {
			case s := <-c.States:
				fmt.Printf("volume=%.1f recording=%v order=%s\n", s.Volume, s.Recording, strings.Join(s.Order, ","))
				return nil
			case ev := <-c.Events:
				if ev.Type == protocol.TypeServerError {
					return fmt.Errorf("rejected: %s", ev.Error)
				}
			case <-timeout:
				return fmt.Errorf("no reply from %s", url)
			}
		}
	},
}

// controlFromFlags builds a control/set payload from the set flags
func controlFromFlags(cmd *cobra.Command) (protocol.ControlSet, error) {
	var ctl protocol.ControlSet
	flags := cmd.Flags()

	if flags.Changed("volume") {
		v, _ := flags.GetFloat32("volume")
		ctl.Volume = &v
	}
	ctl.Effect, _ = flags.GetString("effect")
	if flags.Changed("enable") || flags.Changed("disable") {
		on := flags.Changed("enable")
		ctl.Enabled = &on
	}

	params, _ := flags.GetStringArray("param")
	if len(params) > 0 {
		ctl.Params = make(map[string]float32, len(params))
		for _, p := range params {
			name, value, ok := strings.Cut(p, "=")
			if !ok {
				return ctl, fmt.Errorf("param %q must be name=value", p)
			}
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return ctl, fmt.Errorf("param %q: %w", p, err)
			}
			ctl.Params[name] = float32(f)
		}
	}
	if ctl.Effect == "" && (ctl.Enabled != nil || ctl.Params != nil) {
		return ctl, fmt.Errorf("--enable, --disable and --param need --effect")
	}

	if order, _ := flags.GetStringSlice("order"); len(order) > 0 {
		ctl.Order = order
	}
	if flags.Changed("record") || flags.Changed("stop-record") {
		on := flags.Changed("record")
		ctl.Recording = &on
	}
	if ctl.Volume == nil && ctl.Effect == "" && ctl.Order == nil && ctl.Recording == nil {
		return ctl, fmt.Errorf("nothing to set")
	}
	return ctl, nil
}

// resolveMonitor returns the URL argument or the only discovered instance
func resolveMonitor(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	instances, err := discovery.Discover(3 * time.Second)
	if err != nil {
		return "", err
	}
	switch len(instances) {
	case 0:
		return "", fmt.Errorf("no MicAmp monitors found, pass a URL")
	case 1:
		return instances[0].URL(), nil
	default:
		names := make([]string, len(instances))
		for i, inst := range instances {
			names[i] = inst.Name + " " + inst.URL()
		}
		return "", fmt.Errorf("several monitors found, pass one of:\n  %s", strings.Join(names, "\n  "))
	}
}

// openPlayback opens the configured playback backend at rate
func openPlayback(rate int) (device.Playback, func(), error) {
	var (
		out     device.Playback
		release = func() {}
	)

	switch cfg.Audio.Backend {
	case "oto":
		out = device.NewOtoPlayback(cfg.Audio.PeriodMs)
	default:
		ctx, err := device.NewContext()
		if err != nil {
			return nil, nil, err
		}
		info, err := ctx.FindDevice(device.DirPlayback, cfg.Audio.OutputDevice)
		if err != nil {
			ctx.Close()
			return nil, nil, err
		}
		out = device.NewMalgoPlayback(ctx, info, cfg.Audio.PeriodMs)
		release = func() { ctx.Close() }
	}

	if err := out.Open(rate, out.MinBufferBytes(rate)); err != nil {
		release()
		return nil, nil, err
	}
	return out, func() {
		out.Close()
		release()
	}, nil
}

func logEvent(ev client.Event) {
	switch ev.Type {
	case protocol.TypeRecordingProgress:
		debugf("Recording %ds", ev.Seconds)
	case protocol.TypeRecordingSaved:
		log.Printf("Recording saved: %s", ev.Path)
	case protocol.TypeRecordingError, protocol.TypeServerError:
		log.Printf("Remote error: %s", ev.Error)
	}
}

func addSetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float32("volume", 0, "master volume (0-5)")
	f.String("effect", "", "effect to change, e.g. delay")
	f.Bool("enable", false, "enable --effect")
	f.Bool("disable", false, "disable --effect")
	f.StringArray("param", nil, "effect parameter as name=value, repeatable")
	f.StringSlice("order", nil, "comma-separated effect order")
	f.Bool("record", false, "start recording")
	f.Bool("stop-record", false, "stop recording")
	cmd.MarkFlagsMutuallyExclusive("enable", "disable")
	cmd.MarkFlagsMutuallyExclusive("record", "stop-record")
}

func init() {
	addSetFlags(remoteSetCmd)

	remoteCmd.AddCommand(remoteListenCmd)
	remoteCmd.AddCommand(remoteSetCmd)
}
