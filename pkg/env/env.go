// Package env provides identities of the running capture process.
package env

import (
	"os"
	"sync"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/rs/xid"
)

const appID = "procon"

var (
	machineIDOnce sync.Once
	machineID     string
)

// MachineID retrieves an ID identifying the machine. The raw machine id is
// hashed with the application id, and the hostname is used on systems where
// no machine id is available.
func MachineID() string {
	machineIDOnce.Do(func() {
		id, err := machineid.ProtectedID(appID)
		if err == nil {
			machineID = id
			return
		}
		glog.Warningf("machine id unavailable: %v", err)
		if machineID, err = os.Hostname(); err != nil || machineID == "" {
			machineID = "unknown"
		}
	})
	return machineID
}

// DeviceID returns a short device id derived from the machine id.
func DeviceID() string {
	id := MachineID()
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// ClientID builds the client id of a program on this machine.
func ClientID(program string) string {
	return program + ":" + MachineID()
}

// NewSessionID generates a globally unique, time sortable id for one
// capture session.
func NewSessionID() string {
	return xid.New().String()
}
