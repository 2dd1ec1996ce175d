//go:build linux
// +build linux

package firewalld

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var serviceDirs = []string{
	"/etc/firewalld/services",
	"/usr/lib/firewalld/services",
}

type serviceXML struct {
	XMLName xml.Name      `xml:"service"`
	Ports   []servicePort `xml:"port"`
}

type servicePort struct {
	Port     string `xml:"port,attr"`
	Protocol string `xml:"protocol,attr"`
}

// ServicePorts reads the ports of a service definition. Files in /etc
// shadow the packaged ones.
func ServicePorts(name string) ([]Port, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid service name %q", name)
	}
	var data []byte
	var lastErr error
	for _, dir := range serviceDirs {
		b, err := os.ReadFile(filepath.Join(dir, name+".xml"))
		if err != nil {
			lastErr = err
			continue
		}
		data = b
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("read service %s: %w", name, lastErr)
	}
	return parseServicePorts(name, data)
}

func parseServicePorts(name string, data []byte) ([]Port, error) {
	var svc serviceXML
	if err := xml.Unmarshal(data, &svc); err != nil {
		return nil, fmt.Errorf("parse service %s: %w", name, err)
	}
	ports := make([]Port, 0, len(svc.Ports))
	for _, p := range svc.Ports {
		if p.Port == "" || p.Protocol == "" {
			continue
		}
		ports = append(ports, Port{Port: p.Port, Protocol: p.Protocol})
	}
	slog.Debug("service ports loaded", "service", name, "ports", len(ports))
	return ports, nil
}

// AllPorts expands the services of zp into ports. Services that cannot be
// read are returned as warnings.
func (zp *ZonePorts) AllPorts() ([]Port, []string) {
	ports := append([]Port(nil), zp.Ports...)
	var warnings []string
	for _, svc := range zp.Services {
		svcPorts, err := ServicePorts(svc)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		ports = append(ports, svcPorts...)
	}
	return ports, warnings
}
