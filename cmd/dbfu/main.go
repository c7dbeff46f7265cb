// dbfu uploads a firmware image to a device bootloader over a USB serial port.
//
// Usage:
//
//	dbfu [-port /dev/ttyACM0] [-image app.bin] [-vendor STMicroelectronics]
//
// Without -port, the serial ports whose USB manufacturer starts with -vendor
// are listed; a single match is used directly and several are offered for
// selection. Without -image the path is asked for. Pass --logtostderr -v=1
// to see the protocol trace.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"

	"github.com/moffa90/go-dbfu/ports"
	"github.com/moffa90/go-dbfu/protocol"
	"github.com/moffa90/go-dbfu/serialport"
	"github.com/moffa90/go-dbfu/updater"
)

var (
	portName  = flag.String("port", "", "Serial port to use; discovered by -vendor if empty")
	imagePath = flag.String("image", "", "Firmware image to upload; asked for if empty")
	vendor    = flag.String("vendor", protocol.DefaultVendorPrefix, "USB manufacturer prefix used to discover the device")
	baud      = flag.Int("baud", protocol.DefaultBaudRate, "Serial line speed")
	driver    = flag.String("driver", string(serialport.DriverBugST), "Serial driver: bugst or tarm")
	timeout   = flag.Duration("timeout", 0, "Fail if the device is silent this long (0 waits forever)")
	noPause   = flag.Bool("no-pause", false, "Do not wait for Enter before exiting")
	list      = flag.Bool("list", false, "List matching serial ports and exit")
)

// pollInterval is the port read timeout. Reads return periodically so the
// session notices Ctrl-C and the -timeout deadline; with -timeout 0 it
// still waits for the device indefinitely.
const pollInterval = 100 * time.Millisecond

func main() {
	flag.Parse()
	defer glog.Flush()

	op := newOperator(os.Stdin, os.Stdout)

	if *list {
		if err := listPorts(os.Stdout); err != nil {
			glog.Exitf("List ports: %v", err)
		}
		return
	}

	out := updater.Classify(run(op))
	fmt.Println(out)

	if !*noPause {
		op.Pause()
	}
	glog.Flush()
	if out.Failed() {
		os.Exit(1)
	}
}

func run(op *operator) error {
	drv, err := serialport.ParseDriver(*driver)
	if err != nil {
		return err
	}

	name := *portName
	if name == "" {
		name, err = ports.Select(ports.USBLister{}, *vendor, op)
		if err != nil {
			return err
		}
	}
	glog.Infof("Using serial port %s", name)

	path := *imagePath
	if path == "" {
		path, err = op.PromptImage()
		if err != nil {
			return err
		}
	}

	open := func(name string) (io.ReadWriteCloser, error) {
		cfg := serialport.DefaultConfig(name)
		cfg.Baud = *baud
		cfg.Driver = drv
		cfg.ReadTimeout = pollInterval
		return serialport.Open(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := updater.New(op.Opener(open),
		updater.WithLogger(glogLogger{}),
		updater.WithProgressCallback(op.Progress),
		updater.WithReadTimeout(*timeout),
	)
	return sess.Run(ctx, name, path)
}

func listPorts(w io.Writer) error {
	candidates, err := ports.Discover(ports.USBLister{}, *vendor)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintf(w, "No serial ports from %q\n", *vendor)
		return nil
	}
	for _, c := range candidates {
		fmt.Fprintf(w, "%s\tVID:PID=%s:%s\t%s\n", c.Name, c.VID, c.PID, c.Product)
	}
	return nil
}
