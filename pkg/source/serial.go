package source

import (
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

func openSerial(name string, baud int, timeout time.Duration) (serial.Port, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	// a timed out Read returns (0, nil).
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, err
	}
	glog.Infof("serial %s opened at %d baud", name, baud)
	return port, nil
}

// PortInfo describes a serial port present on the system.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// String formats the port for listing.
func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	s := p.Name + " [USB " + p.VID + ":" + p.PID
	if p.SerialNumber != "" {
		s += " " + p.SerialNumber
	}
	s += "]"
	if p.Product != "" {
		s += " " + p.Product
	}
	return s
}

// ListPorts lists serial ports with USB details where available.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		glog.Warningf("detailed port enumeration failed: %v", err)
		names, err := serial.GetPortsList()
		if err != nil {
			return nil, err
		}
		ports := make([]PortInfo, len(names))
		for n, name := range names {
			ports[n].Name = name
		}
		return ports, nil
	}
	ports := make([]PortInfo, len(details))
	for n, d := range details {
		ports[n] = PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		}
	}
	return ports, nil
}
