package gmp

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type envelopeXML struct {
	XMLName      xml.Name         `xml:"envelope"`
	Token        string           `xml:"token"`
	ActionResult *actionResultXML `xml:"action_result"`
	PortLists    []portListXML    `xml:"get_port_lists>get_port_lists_response>port_list"`
	PortList     []portListXML    `xml:"get_port_list>get_port_lists_response>port_list"`
	GSADResponse *gsadResponseXML `xml:"gsad_response"`
}

type actionResultXML struct {
	Action  string `xml:"action"`
	ID      string `xml:"id"`
	Message string `xml:"message"`
}

type gsadResponseXML struct {
	Title   string `xml:"title"`
	Message string `xml:"message"`
}

type portListsResponseXML struct {
	XMLName    xml.Name      `xml:"get_port_lists_response"`
	Status     string        `xml:"status,attr,omitempty"`
	StatusText string        `xml:"status_text,attr,omitempty"`
	PortLists  []portListXML `xml:"port_list"`
}

type portListXML struct {
	ID        string         `xml:"id,attr,omitempty"`
	Owner     string         `xml:"owner>name,omitempty"`
	Name      string         `xml:"name"`
	Comment   string         `xml:"comment"`
	InUse     int            `xml:"in_use"`
	Writable  int            `xml:"writable"`
	PortCount portCountXML   `xml:"port_count"`
	Ranges    []portRangeXML `xml:"port_ranges>port_range"`
}

type portCountXML struct {
	All int `xml:"all"`
	TCP int `xml:"tcp"`
	UDP int `xml:"udp"`
}

type portRangeXML struct {
	ID      string `xml:"id,attr,omitempty"`
	Start   int    `xml:"start"`
	End     int    `xml:"end"`
	Type    string `xml:"type"`
	Comment string `xml:"comment"`
}

func (p portListXML) toPortList() PortList {
	pl := PortList{
		ID:       p.ID,
		Name:     p.Name,
		Comment:  p.Comment,
		Owner:    p.Owner,
		InUse:    p.InUse != 0,
		Writable: p.Writable != 0,
		Count: PortCount{
			All: p.PortCount.All,
			TCP: p.PortCount.TCP,
			UDP: p.PortCount.UDP,
		},
	}
	for _, r := range p.Ranges {
		pl.PortRanges = append(pl.PortRanges, PortRange{
			ID:         r.ID,
			Start:      r.Start,
			End:        r.End,
			Protocol:   strings.ToLower(r.Type),
			Comment:    r.Comment,
			EntityType: EntityTypePortRange,
		})
	}
	return pl
}

func fromPortList(pl *PortList) portListXML {
	px := portListXML{
		ID:      pl.ID,
		Owner:   pl.Owner,
		Name:    pl.Name,
		Comment: pl.Comment,
		PortCount: portCountXML{
			All: pl.Count.All,
			TCP: pl.Count.TCP,
			UDP: pl.Count.UDP,
		},
	}
	if pl.InUse {
		px.InUse = 1
	}
	if pl.Writable {
		px.Writable = 1
	}
	for _, r := range pl.PortRanges {
		px.Ranges = append(px.Ranges, portRangeXML{
			ID:      r.ID,
			Start:   r.Start,
			End:     r.End,
			Type:    r.Protocol,
			Comment: r.Comment,
		})
	}
	return px
}

func parseEnvelope(data []byte) (*envelopeXML, error) {
	var env envelopeXML
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// errorMessage extracts the most useful message from an error body.
func errorMessage(data []byte) string {
	if env, err := parseEnvelope(data); err == nil {
		if env.ActionResult != nil && env.ActionResult.Message != "" {
			return env.ActionResult.Message
		}
		if env.GSADResponse != nil && env.GSADResponse.Message != "" {
			return env.GSADResponse.Message
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// MarshalPortListXML renders a port list in the manager's export format,
// which import_port_list accepts back.
func MarshalPortListXML(pl *PortList) ([]byte, error) {
	if pl == nil {
		return nil, fmt.Errorf("port list is nil")
	}
	resp := portListsResponseXML{
		Status:     "200",
		StatusText: "OK",
		PortLists:  []portListXML{fromPortList(pl)},
	}
	data, err := xml.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

// ParsePortListXML reads the first port list of an export document.
func ParsePortListXML(data []byte) (*PortList, error) {
	var resp portListsResponseXML
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if len(resp.PortLists) == 0 {
		return nil, fmt.Errorf("no port_list element found")
	}
	pl := resp.PortLists[0].toPortList()
	return &pl, nil
}
