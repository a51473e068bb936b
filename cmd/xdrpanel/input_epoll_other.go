//go:build !linux

package main

import (
	"fmt"
	"os"
	"runtime"
)

func readInputEventsEpoll(files []*os.File, events chan<- inputEvent, readErr chan<- error) {
	readErr <- fmt.Errorf("evdev input is not supported on %s", runtime.GOOS)
}
