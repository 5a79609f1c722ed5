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

	arg "github.com/alexflint/go-arg"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/TheCacophonyProject/spot-camera-bridge/capture"
	"github.com/TheCacophonyProject/spot-camera-bridge/converter"
	"github.com/TheCacophonyProject/spot-camera-bridge/output"
	"github.com/TheCacophonyProject/spot-camera-bridge/replay"
)

var version = "<not set>"

type Args struct {
	Captures   []string `arg:"positional,required" help:"capture files to convert"`
	OutputDir  string   `arg:"-o,--output" help:"directory to write images and records to"`
	SkewSecs   int64    `arg:"--skew-secs" help:"robot clock skew, whole seconds"`
	SkewNanos  int32    `arg:"--skew-nanos" help:"robot clock skew, nanoseconds"`
	NoPNG      bool     `arg:"--no-png" help:"don't write PNG images"`
	NoRecords  bool     `arg:"--no-records" help:"don't write a CBOR record file"`
	Parallel   bool     `arg:"-p,--parallel" help:"convert captures concurrently"`
	Timestamps bool     `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.OutputDir = "."
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
	return run(args)
}

func run(args Args) error {
	skew := &durationpb.Duration{Seconds: args.SkewSecs, Nanos: args.SkewNanos}
	if err := skew.CheckValid(); err != nil {
		return err
	}

	var responses []capture.Response
	for _, filename := range args.Captures {
		resp, err := replay.ReadCaptureFile(filename)
		if err != nil {
			return err
		}
		responses = append(responses, *resp)
	}

	var res *converter.Result
	if args.Parallel {
		res = converter.ConvertParallel(responses, skew)
	} else {
		res = converter.Convert(responses, skew)
	}
	for _, d := range res.Diagnostics {
		log.Printf("failed to convert image from %s", d)
	}
	log.Printf("converted %d of %d captures", len(res.Images), len(responses))

	if err := os.MkdirAll(args.OutputDir, 0755); err != nil {
		return err
	}
	w := output.NewWriter(args.OutputDir, !args.NoPNG, !args.NoRecords)
	written, err := w.WriteBatch(res)
	for _, name := range written {
		log.Printf("wrote %s", name)
	}
	if err != nil {
		return err
	}
	if len(res.Images) == 0 {
		return errors.New("no captures converted")
	}
	return nil
}
