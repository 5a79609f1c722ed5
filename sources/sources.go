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

// Package sources maps robot image source names onto the fixed set of
// cameras this bridge knows about. It is the only place vendor source
// names are interpreted.
package sources

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSourceName = errors.New("unknown image source name")

// Camera is a physical camera on the robot.
type Camera int

const (
	Back Camera = iota
	FrontLeft
	FrontRight
	Left
	Right
	Hand
)

var cameraNames = [...]string{"back", "frontleft", "frontright", "left", "right", "hand"}

func (c Camera) String() string {
	if c < 0 || int(c) >= len(cameraNames) {
		return fmt.Sprintf("camera(%d)", int(c))
	}
	return cameraNames[c]
}

// BodyCameras are fitted to every robot.
var BodyCameras = []Camera{FrontLeft, FrontRight, Left, Right, Back}

// Type is the kind of image a camera produces.
type Type int

const (
	Image Type = iota
	Depth
	DepthRegistered
)

var typeNames = [...]string{"camera", "depth", "depth_registered"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType accepts the names returned by Type.String.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown image type %q", s)
}

// Source identifies one image stream.
type Source struct {
	Camera Camera
	Type   Type
}

func (s Source) String() string {
	return s.Type.String() + "/" + s.Camera.String()
}

type catalog struct {
	byVendor    map[string]Source
	byCanonical map[Source]string
}

func vendorName(s Source) string {
	if s.Camera == Hand {
		switch s.Type {
		case Image:
			return "hand_color_image"
		case Depth:
			return "hand_depth"
		case DepthRegistered:
			return "hand_depth_in_hand_color_frame"
		}
	}
	switch s.Type {
	case Image:
		return s.Camera.String() + "_fisheye_image"
	case Depth:
		return s.Camera.String() + "_depth"
	case DepthRegistered:
		return s.Camera.String() + "_depth_in_visual_frame"
	}
	return ""
}

func newCatalog() *catalog {
	c := &catalog{
		byVendor:    make(map[string]Source),
		byCanonical: make(map[Source]string),
	}
	for cam := range cameraNames {
		for typ := range typeNames {
			s := Source{Camera: Camera(cam), Type: Type(typ)}
			name := vendorName(s)
			c.byVendor[name] = s
			c.byCanonical[s] = name
		}
	}
	return c
}

// Built once, never modified.
var known = newCatalog()

// Resolve returns the Source for a vendor image source name.
func Resolve(name string) (Source, error) {
	s, ok := known.byVendor[name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %q", ErrUnknownSourceName, name)
	}
	return s, nil
}

// VendorName returns the vendor image source name for s.
func VendorName(s Source) (string, error) {
	name, ok := known.byCanonical[s]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSourceName, s)
	}
	return name, nil
}

// All returns every known source.
func All() []Source {
	out := make([]Source, 0, len(known.byCanonical))
	for cam := range cameraNames {
		for typ := range typeNames {
			out = append(out, Source{Camera: Camera(cam), Type: Type(typ)})
		}
	}
	return out
}

// ArmDetector reports whether the robot has an arm, and therefore a hand
// camera.
type ArmDetector interface {
	HasArm() bool
}

// StaticArm is an ArmDetector with a configured answer.
type StaticArm bool

func (a StaticArm) HasArm() bool {
	return bool(a)
}

// DefaultRequest lists the vendor names to request for the given image
// types: every body camera, plus the hand camera if the robot has an arm.
func DefaultRequest(arm ArmDetector, types ...Type) []string {
	cameras := append([]Camera(nil), BodyCameras...)
	if arm != nil && arm.HasArm() {
		cameras = append(cameras, Hand)
	}
	var names []string
	for _, typ := range types {
		for _, cam := range cameras {
			names = append(names, vendorName(Source{Camera: cam, Type: typ}))
		}
	}
	return names
}
