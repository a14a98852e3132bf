// Reina Manager
// Copyright (c) 2026 The Reina Manager Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Manager.
//
// Reina Manager is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Manager is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Manager.  If not, see <http://www.gnu.org/licenses/>.

//go:build linux

package linux

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/wind-mask/ReinaManager/pkg/helpers/command"
)

const (
	systemdService   = "org.freedesktop.systemd1"
	systemdPath      = "/org/freedesktop/systemd1"
	systemdManager   = "org.freedesktop.systemd1.Manager"
	unitActiveState  = "org.freedesktop.systemd1.Unit.ActiveState"
	errNoSuchUnit    = "org.freedesktop.systemd1.NoSuchUnit"
	unitStateActive  = "active"
	stopModeReplace  = "replace"
	systemctlCommand = "systemctl"
)

var errUnitPIDsUnsupported = errors.New("listing unit processes requires D-Bus")

// UnitManager controls units of the user's systemd instance.
type UnitManager interface {
	UnitPIDs(ctx context.Context, unit string) ([]int, error)
	UnitActive(ctx context.Context, unit string) (bool, error)
	StopUnit(ctx context.Context, unit string) error
	ResetFailed(ctx context.Context, unit string) error
}

// busManager talks to the user manager over the session bus.
type busManager struct {
	conn *dbus.Conn
}

func dialUserManager() (*busManager, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session D-Bus: %w", err)
	}
	return &busManager{conn: conn}, nil
}

func (m *busManager) manager() dbus.BusObject {
	return m.conn.Object(systemdService, systemdPath)
}

// unitProcess is one entry of GetUnitProcesses, signature (sus).
type unitProcess struct {
	Cgroup  string
	PID     uint32
	Command string
}

func (m *busManager) UnitPIDs(ctx context.Context, unit string) ([]int, error) {
	var procs []unitProcess
	err := m.manager().CallWithContext(ctx, systemdManager+".GetUnitProcesses", 0, unit).Store(&procs)
	if err != nil {
		return nil, fmt.Errorf("GetUnitProcesses %s: %w", unit, err)
	}

	pids := make([]int, 0, len(procs))
	for _, p := range procs {
		pids = append(pids, int(p.PID))
	}
	return pids, nil
}

func (m *busManager) UnitActive(ctx context.Context, unit string) (bool, error) {
	var path dbus.ObjectPath
	err := m.manager().CallWithContext(ctx, systemdManager+".GetUnit", 0, unit).Store(&path)
	if err != nil {
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) && dbusErr.Name == errNoSuchUnit {
			return false, nil
		}
		return false, fmt.Errorf("GetUnit %s: %w", unit, err)
	}

	v, err := m.conn.Object(systemdService, path).GetProperty(unitActiveState)
	if err != nil {
		return false, fmt.Errorf("ActiveState %s: %w", unit, err)
	}
	state, ok := v.Value().(string)
	if !ok {
		return false, fmt.Errorf("ActiveState %s: unexpected type %s", unit, v.Signature())
	}
	return state == unitStateActive, nil
}

func (m *busManager) StopUnit(ctx context.Context, unit string) error {
	var job dbus.ObjectPath
	err := m.manager().CallWithContext(ctx, systemdManager+".StopUnit", 0, unit, stopModeReplace).Store(&job)
	if err != nil {
		return fmt.Errorf("StopUnit %s: %w", unit, err)
	}
	return nil
}

func (m *busManager) ResetFailed(ctx context.Context, unit string) error {
	if call := m.manager().CallWithContext(ctx, systemdManager+".ResetFailedUnit", 0, unit); call.Err != nil {
		return fmt.Errorf("ResetFailedUnit %s: %w", unit, call.Err)
	}
	return nil
}

func (m *busManager) Close() error {
	//nolint:wrapcheck // close error is only logged
	return m.conn.Close()
}

// ctlManager shells out to systemctl when the bus is unavailable.
type ctlManager struct {
	exec command.Executor
}

func (*ctlManager) UnitPIDs(context.Context, string) ([]int, error) {
	return nil, errUnitPIDsUnsupported
}

func (m *ctlManager) UnitActive(ctx context.Context, unit string) (bool, error) {
	// is-active exits non-zero for inactive units but still prints the state
	out, err := m.exec.Output(ctx, systemctlCommand, "--user", "is-active", unit)
	state := strings.TrimSpace(string(out))
	if state != "" {
		return state == unitStateActive, nil
	}
	if err != nil {
		return false, fmt.Errorf("systemctl is-active %s: %w", unit, err)
	}
	return false, nil
}

func (m *ctlManager) StopUnit(ctx context.Context, unit string) error {
	if err := m.exec.Run(ctx, systemctlCommand, "--user", "stop", unit); err != nil {
		return fmt.Errorf("systemctl stop %s: %w", unit, err)
	}
	return nil
}

func (m *ctlManager) ResetFailed(ctx context.Context, unit string) error {
	if err := m.exec.Run(ctx, systemctlCommand, "--user", "reset-failed", unit); err != nil {
		return fmt.Errorf("systemctl reset-failed %s: %w", unit, err)
	}
	return nil
}
