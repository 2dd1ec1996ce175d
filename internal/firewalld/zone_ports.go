//go:build linux
// +build linux

package firewalld

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"

	"lazyportlist/internal/validation"
)

// ZonePorts reads the ports and services a zone opens.
func (c *Client) ZonePorts(zone string, permanent bool) (*ZonePorts, error) {
	if zone == "" {
		return nil, ErrInvalidZone
	}
	if !c.version.dictSettings() {
		if permanent {
			return nil, ErrUnsupportedAPI
		}
		return c.zonePortsLegacy(zone)
	}

	var settings map[string]dbus.Variant
	if permanent {
		obj, err := c.configZoneObject(zone)
		if err != nil {
			return nil, classify(err)
		}
		if err := c.callObject(obj, dbusInterface+".config.zone.getSettings2", &settings); err != nil {
			return nil, classify(err)
		}
	} else {
		if err := c.call(dbusInterface+".zone.getZoneSettings2", &settings, zone); err != nil {
			return nil, classify(err)
		}
	}

	zp := parseZonePorts(zone, settings)
	zp.Permanent = permanent
	return zp, nil
}

func (c *Client) zonePortsLegacy(zone string) (*ZonePorts, error) {
	var ports [][]string
	if err := c.call(dbusInterface+".zone.getPorts", &ports, zone); err != nil {
		return nil, classify(err)
	}
	var services []string
	if err := c.call(dbusInterface+".zone.getServices", &services, zone); err != nil {
		return nil, classify(err)
	}
	parsed, err := parsePortTuples(ports)
	if err != nil {
		return nil, err
	}
	return &ZonePorts{Zone: zone, Ports: parsed, Services: services}, nil
}

func (c *Client) configZoneObject(zone string) (dbus.BusObject, error) {
	var path dbus.ObjectPath
	configObj := c.conn.Object(dbusInterface, dbusConfigPath)
	if err := c.callObject(configObj, dbusInterface+".config.getZoneByName", &path, zone); err != nil {
		return nil, err
	}
	return c.conn.Object(dbusInterface, path), nil
}

func parseZonePorts(zone string, settings map[string]dbus.Variant) *ZonePorts {
	zp := &ZonePorts{Zone: zone}

	if v, ok := settings["ports"]; ok {
		ports, err := variantToPorts(v)
		if err != nil {
			slog.Warn("failed to parse ports", "zone", zone, "error", err)
		} else {
			zp.Ports = ports
		}
	}
	if v, ok := settings["services"]; ok {
		zp.Services = variantToStringSlice(v)
	}

	slog.Debug("zone ports parsed", "zone", zone, "ports", len(zp.Ports), "services", len(zp.Services))
	return zp
}

// Rejected is a firewalld port that cannot become a port list range.
type Rejected struct {
	Port Port
	Err  error
}

func (r Rejected) String() string {
	return fmt.Sprintf("%s: %v", r.Port, r.Err)
}

// Ranges converts ports to port list ranges. Only tcp and udp survive;
// duplicates are dropped in order.
func Ranges(ports []Port) ([]validation.Range, []Rejected) {
	ranges := make([]validation.Range, 0, len(ports))
	var rejected []Rejected
	seen := make(map[validation.Range]struct{}, len(ports))
	for _, p := range ports {
		r, err := validation.ParseRangeString(p.Port + "/" + strings.ToLower(p.Protocol))
		if err != nil {
			rejected = append(rejected, Rejected{Port: p, Err: err})
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		ranges = append(ranges, r)
	}
	return ranges, rejected
}

func variantToStringSlice(v dbus.Variant) []string {
	switch val := v.Value().(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				slog.Warn("unexpected item type in string slice", "type", fmt.Sprintf("%T", item))
			}
		}
		return out
	default:
		slog.Warn("unexpected variant type for string slice", "type", fmt.Sprintf("%T", val))
		return nil
	}
}

func variantToPorts(v dbus.Variant) ([]Port, error) {
	switch val := v.Value().(type) {
	case [][]string:
		return parsePortTuples(val)
	case []string:
		return parsePortStrings(val)
	case []interface{}:
		return parsePortInterfaces(val)
	case [][]interface{}:
		return parsePortInterfaceTuples(val)
	default:
		return nil, fmt.Errorf("unexpected port format: %T", val)
	}
}

func parsePortStrings(items []string) ([]Port, error) {
	ports := make([]Port, 0, len(items))
	for _, item := range items {
		port, proto, ok := strings.Cut(item, "/")
		if !ok || strings.Contains(proto, "/") {
			return nil, fmt.Errorf("invalid port string: %q", item)
		}
		ports = append(ports, Port{Port: port, Protocol: proto})
	}
	return ports, nil
}

func parsePortTuples(items [][]string) ([]Port, error) {
	ports := make([]Port, 0, len(items))
	for _, item := range items {
		if len(item) != 2 {
			return nil, fmt.Errorf("invalid port tuple: %v", item)
		}
		ports = append(ports, Port{Port: item[0], Protocol: item[1]})
	}
	return ports, nil
}

func parsePortInterfaces(items []interface{}) ([]Port, error) {
	ports := make([]Port, 0, len(items))
	for _, item := range items {
		switch val := item.(type) {
		case []string:
			parsed, err := parsePortTuples([][]string{val})
			if err != nil {
				return nil, err
			}
			ports = append(ports, parsed...)
		case []interface{}:
			parsed, err := parsePortInterfaceTuples([][]interface{}{val})
			if err != nil {
				return nil, err
			}
			ports = append(ports, parsed...)
		case string:
			parsed, err := parsePortStrings([]string{val})
			if err != nil {
				return nil, err
			}
			ports = append(ports, parsed...)
		default:
			return nil, fmt.Errorf("unexpected port tuple type: %T", val)
		}
	}
	return ports, nil
}

func parsePortInterfaceTuples(items [][]interface{}) ([]Port, error) {
	ports := make([]Port, 0, len(items))
	for _, item := range items {
		if len(item) != 2 {
			return nil, fmt.Errorf("invalid port tuple: %v", item)
		}
		p, ok1 := item[0].(string)
		proto, ok2 := item[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid port tuple types: %T %T", item[0], item[1])
		}
		ports = append(ports, Port{Port: p, Protocol: proto})
	}
	return ports, nil
}
