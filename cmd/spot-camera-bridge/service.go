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
	"sort"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	dbusName = "org.cacophony.spotcamerabridge"
	dbusPath = "/org/cacophony/spotcamerabridge"
)

type service struct {
	bridge *bridge
}

func startService(b *bridge) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("name already taken")
	}
	s := &service{bridge: b}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")
	return nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// RobotTimeToLocal converts a robot clock time to local seconds and
// nanoseconds.
func (s *service) RobotTimeToLocal(sec int64, nanos int32) (uint32, uint32, *dbus.Error) {
	t, err := s.bridge.conv.RobotTimeToLocal(&timestamppb.Timestamp{Seconds: sec, Nanos: nanos})
	if err != nil {
		return 0, 0, makeDbusError("RobotTimeToLocal", err)
	}
	return t.Sec, t.Nanosec, nil
}

// LastBatch returns the request ID of the most recent batch and the
// sources it converted.
func (s *service) LastBatch() (string, []string, *dbus.Error) {
	res := s.bridge.lastBatch()
	if res == nil {
		return "", nil, makeDbusError("LastBatch", errors.New("no batch converted yet"))
	}
	converted := make([]string, 0, len(res.Images))
	for src := range res.Images {
		converted = append(converted, src.String())
	}
	sort.Strings(converted)
	return res.RequestID, converted, nil
}

func makeDbusError(name string, err error) *dbus.Error {
	return &dbus.Error{
		Name: dbusName + "." + name,
		Body: []interface{}{err.Error()},
	}
}
