// Package env provides common settings for devices and the controllers
// connecting to them.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so the raw host ID isn't published.
const AppID = "degu"

// IDLen is the length of device IDs derived from the machine ID.
const IDLen = 16

// MachineID retrieves the unique ID identifying the machine.
func MachineID() (string, error) {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		return "", err
	}
	if len(id) > IDLen {
		id = id[:IDLen]
	}
	return id, nil
}

// DefaultID returns MachineID, or the hostname if the machine has no ID.
func DefaultID() string {
	id, err := MachineID()
	if err == nil {
		return id
	}
	glog.Warningf("machine id unavailable: %v", err)
	if id, err = os.Hostname(); err == nil {
		return id
	}
	return ""
}
