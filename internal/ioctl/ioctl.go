// Package ioctl encodes and issues Linux ioctl requests.
package ioctl

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Mode is the IOCTL direction.
type Mode uint8

// Modes
const (
	None Mode = iota
	Write
	Read
)

// Command to be sent over ioctl.
type Command uintptr

func (c Command) String() string {
	var (
		mode = Mode(c >> 30 & 0x03)
		size = c >> 16 & 0x3fff
		cmd  = c & 0xffff
		str  string
	)
	if mode&Write > 0 {
		str += " write"
	}
	if mode&Read > 0 {
		str += " read"
	}
	return fmt.Sprintf("ioctl%s (%d bytes) 0x%04x", str, size, uintptr(cmd))
}

// Encode an ioctl command.
func Encode(mode Mode, size uint16, cmd uintptr) Command {
	return Command(mode)<<30 | Command(size)<<16 | Command(cmd)
}

// For encodes cmd for a value of type T.
func For[T any](mode Mode, cmd uintptr) Command {
	var v T
	return Encode(mode, uint16(unsafe.Sizeof(v)), cmd)
}

// Get reads a value of type T from the driver.
func Get[T any](fd uintptr, cmd uintptr) (T, error) {
	var v T
	err := call(fd, For[T](Read, cmd), uintptr(unsafe.Pointer(&v)))
	return v, err
}

// Set writes v to the driver.
func Set[T any](fd uintptr, cmd uintptr, v T) error {
	return call(fd, For[T](Write, cmd), uintptr(unsafe.Pointer(&v)))
}

func call(fd uintptr, command Command, arg uintptr) error {
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, uintptr(command), arg); errno != 0 {
		return fmt.Errorf("%s failed: %w", command, errno)
	}
	return nil
}
