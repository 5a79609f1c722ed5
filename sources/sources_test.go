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

package sources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownNames(t *testing.T) {
	cases := map[string]Source{
		"frontleft_fisheye_image":        {Camera: FrontLeft, Type: Image},
		"frontright_depth":               {Camera: FrontRight, Type: Depth},
		"back_depth_in_visual_frame":     {Camera: Back, Type: DepthRegistered},
		"left_fisheye_image":             {Camera: Left, Type: Image},
		"right_depth":                    {Camera: Right, Type: Depth},
		"hand_color_image":               {Camera: Hand, Type: Image},
		"hand_depth":                     {Camera: Hand, Type: Depth},
		"hand_depth_in_hand_color_frame": {Camera: Hand, Type: DepthRegistered},
	}
	for name, want := range cases {
		got, err := Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestResolveUnknownName(t *testing.T) {
	for _, name := range []string{"", "hand_fisheye_image", "FRONTLEFT_DEPTH", "frontleft_depth "} {
		_, err := Resolve(name)
		assert.True(t, errors.Is(err, ErrUnknownSourceName), name)
	}
}

func TestCatalogIsBidirectional(t *testing.T) {
	all := All()
	assert.Len(t, all, len(cameraNames)*len(typeNames))
	seen := map[string]bool{}
	for _, s := range all {
		name, err := VendorName(s)
		require.NoError(t, err)
		assert.False(t, seen[name], "duplicate vendor name %s", name)
		seen[name] = true

		back, err := Resolve(name)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
}

func TestVendorNameUnknown(t *testing.T) {
	_, err := VendorName(Source{Camera: Camera(99)})
	assert.True(t, errors.Is(err, ErrUnknownSourceName))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "depth/frontleft", Source{Camera: FrontLeft, Type: Depth}.String())
	assert.Equal(t, "camera(12)", Camera(12).String())
	assert.Equal(t, "type(-1)", Type(-1).String())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("Depth_Registered")
	require.NoError(t, err)
	assert.Equal(t, DepthRegistered, typ)

	_, err = ParseType("thermal")
	assert.EqualError(t, err, `unknown image type "thermal"`)
}

func TestDefaultRequestWithoutArm(t *testing.T) {
	assert.Equal(t, []string{
		"frontleft_fisheye_image",
		"frontright_fisheye_image",
		"left_fisheye_image",
		"right_fisheye_image",
		"back_fisheye_image",
	}, DefaultRequest(StaticArm(false), Image))
}

func TestDefaultRequestWithArm(t *testing.T) {
	names := DefaultRequest(StaticArm(true), Image, Depth)
	assert.Len(t, names, 12)
	assert.Contains(t, names, "hand_color_image")
	assert.Contains(t, names, "hand_depth")
	assert.Equal(t, "frontleft_depth", names[6])
}

func TestDefaultRequestNilDetector(t *testing.T) {
	assert.NotContains(t, DefaultRequest(nil, Image), "hand_color_image")
}
