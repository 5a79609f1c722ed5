// spot-camera-bridge - translate robot camera captures into standard images
//  Copyright (C) 2023, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"log"
	"os"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"

	"github.com/TheCacophonyProject/spot-camera-bridge/converter"
	"github.com/TheCacophonyProject/spot-camera-bridge/events"
	"github.com/TheCacophonyProject/spot-camera-bridge/loglimiter"
	"github.com/TheCacophonyProject/spot-camera-bridge/output"
	"github.com/TheCacophonyProject/spot-camera-bridge/replay"
	"github.com/TheCacophonyProject/spot-camera-bridge/throttle"
)

const logInterval = 5 * time.Minute

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	Once       bool   `arg:"--once" help:"convert one batch and exit"`
	NoService  bool   `arg:"--no-service" help:"don't register the dbus service"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/spot-camera-bridge.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()
	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)

	b, err := newBridge(conf)
	if err != nil {
		return err
	}

	if !args.NoService {
		log.Print("starting dbus service")
		if err := startService(b); err != nil {
			return err
		}
	}

	return runLoop(b, conf.PollInterval, args.Once)
}

func newBridge(conf *Config) (*bridge, error) {
	reporter := events.NewReporter()

	captures := replay.NewDirRequester(conf.CaptureDir)
	captures.SetLogger(loglimiter.New(logInterval))

	var requester converter.ImageRequester = captures
	if conf.Throttler.ApplyThrottling {
		requester = throttle.NewThrottledRequester(requester, &conf.Throttler, reporter)
	}
	conv := converter.New(requester, converter.StaticClockSkew(conf.ClockSkew))
	conv.SetParallel(conf.Parallel)
	conv.SetLogger(loglimiter.New(logInterval))

	b := &bridge{
		conv:     conv,
		request:  conf.Request(),
		reporter: reporter,
		log:      loglimiter.New(logInterval),
	}
	if conf.WritePNG || conf.WriteRecords {
		if err := os.MkdirAll(conf.OutputDir, 0755); err != nil {
			return nil, err
		}
		log.Print("deleting temp files")
		if err := output.DeleteTempFiles(conf.OutputDir); err != nil {
			return nil, err
		}
		b.writer = output.NewWriter(conf.OutputDir, conf.WritePNG, conf.WriteRecords)
	}
	return b, nil
}

func runLoop(b *bridge, interval time.Duration, once bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := b.poll()
		daemon.SdNotify(false, "WATCHDOG=1")
		if once {
			return err
		}
		if err != nil && !errors.Is(err, throttle.ErrThrottled) {
			b.log.Printf("batch failed: %v", err)
		}
		<-ticker.C
	}
}

func logConfig(conf *Config) {
	log.Printf("capture dir: %s", conf.CaptureDir)
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("poll interval: %s", conf.PollInterval)
	log.Printf("sources: %v", conf.Request())
	log.Printf("clock skew: %s", conf.ClockSkew.AsDuration())
	log.Printf("write png: %t, write records: %t", conf.WritePNG, conf.WriteRecords)
	if conf.Throttler.ApplyThrottling {
		log.Printf("throttling: bucket of %d, refill every %s", conf.Throttler.BucketSize, conf.Throttler.MinRefill)
	} else {
		log.Print("throttling disabled")
	}
	if conf.Parallel {
		log.Print("converting captures in parallel")
	}
}
