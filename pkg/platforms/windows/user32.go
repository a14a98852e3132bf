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

//go:build windows

package windows

import (
	"syscall"
	"unsafe"

	"github.com/wind-mask/ReinaManager/pkg/helpers/syncutil"
	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsIconic                 = user32.NewProc("IsIconic")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procSendInput                = user32.NewProc("SendInput")
)

func foregroundWindow() windows.HWND {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return windows.HWND(hwnd)
}

func windowPID(hwnd windows.HWND) int {
	var pid uint32
	_, _, _ = procGetWindowThreadProcessID.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	return int(pid)
}

func windowVisible(hwnd windows.HWND) bool {
	ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	return ret != 0
}

func windowMinimized(hwnd windows.HWND) bool {
	ret, _, _ := procIsIconic.Call(uintptr(hwnd))
	return ret != 0
}

// EnumWindows takes a C callback with no user state that Go can pass
// safely, so one callback is created for the process lifetime and the
// wanted PID set lives in package state guarded by enumMu.
var (
	enumMu      syncutil.Mutex
	enumWanted  map[int]bool
	enumFound   map[int]bool
	enumWindows = windows.NewCallback(func(h, _ uintptr) uintptr {
		if hwnd := windows.HWND(h); windowVisible(hwnd) {
			if pid := windowPID(hwnd); enumWanted[pid] {
				enumFound[pid] = true
			}
		}
		return 1
	})
)

// visibleWindowPIDs returns the members of pids owning at least one visible
// top-level window, in input order.
func visibleWindowPIDs(pids []int) []int {
	if len(pids) == 0 {
		return nil
	}

	enumMu.Lock()
	defer enumMu.Unlock()

	enumWanted = make(map[int]bool, len(pids))
	enumFound = make(map[int]bool, len(pids))
	for _, pid := range pids {
		enumWanted[pid] = true
	}
	_, _, _ = procEnumWindows.Call(enumWindows, 0)

	var out []int
	for _, pid := range pids {
		if enumFound[pid] {
			out = append(out, pid)
			delete(enumFound, pid)
		}
	}
	enumWanted, enumFound = nil, nil
	return out
}

const (
	inputKeyboard = 1
	keyEventUp    = 0x0002

	vkShift = 0x10
	vkLWin  = 0x5B
	vkA     = 0x41
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// input mirrors the Win32 INPUT struct. The padding covers the larger
// MOUSEINPUT member of the union.
type input struct {
	inputType uint32
	ki        keyboardInput
	padding   uint64
}

func keyInput(vk uint16, up bool) input {
	in := input{inputType: inputKeyboard, ki: keyboardInput{wVk: vk}}
	if up {
		in.ki.dwFlags = keyEventUp
	}
	return in
}

// chord presses keys in order and releases them in reverse.
func chord(keys ...uint16) []input {
	inputs := make([]input, 0, len(keys)*2)
	for _, k := range keys {
		inputs = append(inputs, keyInput(k, false))
	}
	for i := len(keys) - 1; i >= 0; i-- {
		inputs = append(inputs, keyInput(keys[i], true))
	}
	return inputs
}

func sendInputs(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}
	sent, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(sent) != len(inputs) {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 { //nolint:errorlint // raw syscall errno
			return errno
		}
		return syscall.EINVAL
	}
	return nil
}

// HotkeySender sends the Magpie scale hotkey (Win+Shift+A) to the
// foreground window.
type HotkeySender struct{}

func (HotkeySender) SendUpscaleHotkey() error {
	return sendInputs(chord(vkLWin, vkShift, vkA))
}
