package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"time"

	"adcvolt/config"
	"adcvolt/core"
	"adcvolt/host/monitor"
	"adcvolt/host/serial"

	"tinygo.org/x/drivers"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	configPath = flag.String("config", "", "JSON sampling config (simulation mode)")
	sim        = flag.Bool("sim", false, "Run the sampler against a simulated ADC instead of a board")
	count      = flag.Int("count", 0, "Stop after this many readings (0 = run until interrupted)")
	sensorMode = flag.Bool("sensor", false, "With -sim, read through the drivers.Sensor interface")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if *sim {
		err = runSim(ctx)
	} else {
		err = runMonitor(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runMonitor prints the reports a board sends and summarises them on exit
func runMonitor(ctx context.Context) error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to board on %s...\n", *device)
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil && *verbose {
		fmt.Fprintf(os.Stderr, "flush: %v\n", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mon := monitor.New(port)
	mon.Follow = true
	mon.OnLine = func(line string) {
		if *verbose {
			fmt.Printf("# %s\n", line)
		}
	}
	n := 0
	mon.OnReading = func(r core.Reading) {
		fmt.Printf("%8.3f V  0x%04X\n", r.Volts, uint32(r.Raw))
		n++
		if *count > 0 && n >= *count {
			cancel()
		}
	}

	err = mon.Run(ctx)
	printStats(mon.Stats())
	return err
}

// runSim drives the full acquisition pipeline on the host
func runSim(ctx context.Context) error {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return err
		}
		if cfg, err = config.LoadConfig(data); err != nil {
			return err
		}
	}

	if *verbose {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
		core.SetDebugEnabled(true)
	}

	chs, err := cfg.ChannelSet()
	if err != nil {
		return err
	}
	conv, err := cfg.Converter()
	if err != nil {
		return err
	}

	adc := core.NewSimADC(0)
	adc.Delay = 50 * time.Microsecond
	start := time.Now()
	adc.SetSource(func() core.RawSample {
		// 0.5 Hz sine around mid-scale
		phase := 2 * math.Pi * 0.5 * time.Since(start).Seconds()
		mid := float64(conv.MaxCode()) / 2
		return core.RawSample(mid + mid*0.8*math.Sin(phase))
	})

	ctrl, err := core.Initialize(adc, chs)
	if err != nil {
		return err
	}
	sampler, err := core.NewSampler(ctrl, conv, cfg.PollPolicy())
	if err != nil {
		return err
	}
	sampler.CycleTimeout = cfg.Timeout()

	sc := sampler.Converter()
	fmt.Printf("Hello World!\r\n\r\n")
	fmt.Printf("Simulated ADC: channels %s, %d bits, %.3f V reference\r\n\r\n",
		chs, sc.ResolutionBits, sc.ReferenceVolts)

	if *sensorMode {
		st, err := runSensor(ctx, os.Stdout, sampler, cfg.Interval(), *count)
		printStats(st)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stats monitor.Stats
	rep := &countingReporter{
		WriterReporter: core.WriterReporter{
			W: os.Stdout,
			OnFault: func(err error) {
				fmt.Fprintf(os.Stderr, "fault: %v\n", err)
				core.DumpEvents()
			},
		},
		stats: &stats,
		limit: *count,
		done:  cancel,
	}

	err = sampler.Run(ctx, cfg.Interval(), rep)
	printStats(stats)
	return err
}

// runSensor reads s through drivers.Sensor every interval and prints each
// reading in microvolts. It returns after limit readings (0 = until ctx is done).
func runSensor(ctx context.Context, w io.Writer, s *core.Sampler, interval time.Duration, limit int) (monitor.Stats, error) {
	var stats monitor.Stats
	var sensor drivers.Sensor = s

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		err := sensor.Update(drivers.Voltage)
		switch {
		case err == nil:
			r := s.Last()
			stats.Update(r.Volts)
			fmt.Fprintf(w, "%d uV  0x%04X  %.3f V\n", s.Voltage(), uint32(s.Raw()), r.Volts)
			if limit > 0 && stats.Count >= uint64(limit) {
				return stats, nil
			}
		case errors.Is(err, core.ErrTimeout), errors.Is(err, core.ErrRange):
			fmt.Fprintf(os.Stderr, "fault: %v\n", err)
		default:
			return stats, err
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-tick.C:
		}
	}
}

// countingReporter stops the run after limit readings
type countingReporter struct {
	core.WriterReporter
	stats *monitor.Stats
	limit int
	done  context.CancelFunc
}

func (c *countingReporter) Report(r core.Reading) error {
	if err := c.WriterReporter.Report(r); err != nil {
		return err
	}
	c.stats.Update(r.Volts)
	if c.limit > 0 && c.stats.Count >= uint64(c.limit) {
		c.done()
	}
	return nil
}

func printStats(st monitor.Stats) {
	if st.Count == 0 {
		fmt.Println("\nNo readings received.")
		return
	}
	fmt.Printf("\n%d readings: min %.3f V, max %.3f V, mean %.4f V, stddev %.4f V\n",
		st.Count, st.Min, st.Max, st.Mean(), st.StdDev())
}
