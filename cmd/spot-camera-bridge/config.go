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
	"fmt"
	"io/ioutil"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/spot-camera-bridge/sources"
	"github.com/TheCacophonyProject/spot-camera-bridge/throttle"
)

type Config struct {
	CaptureDir   string
	OutputDir    string
	PollInterval time.Duration
	HasArm       bool
	ImageTypes   []sources.Type
	Sources      []string
	ClockSkew    *durationpb.Duration
	Throttler    throttle.ThrottlerConfig
	WritePNG     bool
	WriteRecords bool
	Parallel     bool
}

func (conf *Config) Validate() error {
	if conf.CaptureDir == "" {
		return errors.New("capture-dir must be set")
	}
	if (conf.WritePNG || conf.WriteRecords) && conf.OutputDir == "" {
		return errors.New("output-dir must be set when writing output")
	}
	if conf.PollInterval <= 0 {
		return errors.New("poll-interval should be positive")
	}
	for _, name := range conf.Sources {
		if _, err := sources.Resolve(name); err != nil {
			return fmt.Errorf("invalid sources: %w", err)
		}
	}
	if err := conf.ClockSkew.CheckValid(); err != nil {
		return fmt.Errorf("invalid clock-skew: %w", err)
	}
	if err := conf.Throttler.Validate(); err != nil {
		return err
	}
	return nil
}

// Request returns the vendor source names to ask for each poll.
func (conf *Config) Request() []string {
	if len(conf.Sources) > 0 {
		return conf.Sources
	}
	return sources.DefaultRequest(sources.StaticArm(conf.HasArm), conf.ImageTypes...)
}

type clockSkewConfig struct {
	Seconds int64 `yaml:"seconds"`
	Nanos   int32 `yaml:"nanos"`
}

type rawConfig struct {
	CaptureDir   string                   `yaml:"capture-dir"`
	OutputDir    string                   `yaml:"output-dir"`
	PollInterval time.Duration            `yaml:"poll-interval"`
	HasArm       bool                     `yaml:"has-arm"`
	ImageTypes   []string                 `yaml:"image-types"`
	Sources      []string                 `yaml:"sources"`
	ClockSkew    clockSkewConfig          `yaml:"clock-skew"`
	Throttler    throttle.ThrottlerConfig `yaml:"throttler"`
	WritePNG     bool                     `yaml:"write-png"`
	WriteRecords bool                     `yaml:"write-records"`
	Parallel     bool                     `yaml:"parallel"`
}

var defaultConfig = rawConfig{
	CaptureDir:   "/var/spool/spot-captures",
	OutputDir:    "/var/spool/spot-images",
	PollInterval: time.Second,
	ImageTypes:   []string{"camera", "depth"},
	Throttler:    throttle.DefaultThrottlerConfig(),
	WritePNG:     true,
	WriteRecords: true,
}

func ParseConfigFile(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	raw := defaultConfig
	if err := yaml.Unmarshal(buf, &raw); err != nil {
		return nil, err
	}

	conf := &Config{
		CaptureDir:   raw.CaptureDir,
		OutputDir:    raw.OutputDir,
		PollInterval: raw.PollInterval,
		HasArm:       raw.HasArm,
		Sources:      raw.Sources,
		ClockSkew:    &durationpb.Duration{Seconds: raw.ClockSkew.Seconds, Nanos: raw.ClockSkew.Nanos},
		Throttler:    raw.Throttler,
		WritePNG:     raw.WritePNG,
		WriteRecords: raw.WriteRecords,
		Parallel:     raw.Parallel,
	}
	for _, name := range raw.ImageTypes {
		t, err := sources.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid image-types: %w", err)
		}
		conf.ImageTypes = append(conf.ImageTypes, t)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}
