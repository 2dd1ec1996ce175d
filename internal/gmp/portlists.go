package gmp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

func (c *Client) ListPortLists(ctx context.Context, filter string) ([]PortList, error) {
	params := url.Values{}
	if filter != "" {
		params.Set("filter", filter)
	}
	body, err := c.get(ctx, "get_port_lists", params)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}

	lists := make([]PortList, 0, len(env.PortLists))
	for _, p := range env.PortLists {
		lists = append(lists, p.toPortList())
	}
	slog.Debug("port lists listed", "count", len(lists))
	return lists, nil
}

func (c *Client) GetPortList(ctx context.Context, id string) (*PortList, error) {
	if id == "" {
		return nil, fmt.Errorf("port list id is required")
	}
	params := url.Values{}
	params.Set("port_list_id", id)
	params.Set("details", "1")

	body, err := c.get(ctx, "get_port_list", params)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}

	candidates := env.PortList
	if len(candidates) == 0 {
		candidates = env.PortLists
	}
	for _, p := range candidates {
		if p.ID == id {
			pl := p.toPortList()
			slog.Debug("port list fetched", "id", id, "ranges", len(pl.PortRanges))
			return &pl, nil
		}
	}
	return nil, &APIError{Status: 404, Command: "get_port_list", Message: "port list " + id + " not found"}
}

func (c *Client) CreatePortList(ctx context.Context, data PortListData) (*Response, error) {
	slog.Info("creating port list", "name", data.Name)
	params := url.Values{}
	params.Set("name", data.Name)
	params.Set("comment", data.Comment)
	params.Set("port_range", data.PortRange)
	params.Set("from_file", "0")

	body, err := c.post(ctx, "create_port_list", params)
	if err != nil {
		return nil, err
	}
	return actionResponse("create_port_list", body)
}

func (c *Client) SavePortList(ctx context.Context, data PortListData) (*Response, error) {
	if data.ID == "" {
		return nil, fmt.Errorf("port list id is required")
	}
	slog.Info("saving port list", "id", data.ID, "name", data.Name)
	params := url.Values{}
	params.Set("port_list_id", data.ID)
	params.Set("name", data.Name)
	params.Set("comment", data.Comment)

	body, err := c.post(ctx, "save_port_list", params)
	if err != nil {
		return nil, err
	}
	return actionResponse("save_port_list", body)
}

func (c *Client) ClonePortList(ctx context.Context, id string) (*Response, error) {
	slog.Info("cloning port list", "id", id)
	params := url.Values{}
	params.Set("resource_type", "port_list")
	params.Set("resource_id", id)

	body, err := c.post(ctx, "clone", params)
	if err != nil {
		return nil, err
	}
	return actionResponse("clone", body)
}

// DeletePortList moves the port list to the trashcan.
func (c *Client) DeletePortList(ctx context.Context, id string) error {
	slog.Info("deleting port list", "id", id)
	params := url.Values{}
	params.Set("port_list_id", id)

	_, err := c.post(ctx, "delete_port_list", params)
	return err
}

func (c *Client) ExportPortList(ctx context.Context, id string) ([]byte, error) {
	params := url.Values{}
	params.Set("port_list_id", id)
	return c.get(ctx, "export_port_list", params)
}

func (c *Client) ImportPortList(ctx context.Context, data ImportData) (*Response, error) {
	if len(data.XML) == 0 {
		return nil, fmt.Errorf("import payload is empty")
	}
	slog.Info("importing port list", "file", data.Filename, "bytes", len(data.XML))
	params := url.Values{}
	params.Set("xml_file", string(data.XML))

	body, err := c.post(ctx, "import_port_list", params)
	if err != nil {
		return nil, err
	}
	return actionResponse("import_port_list", body)
}

func (c *Client) CreatePortRange(ctx context.Context, req CreatePortRangeRequest) (*Response, error) {
	slog.Info("creating port range", "port_list", req.PortListID, "start", req.Start, "end", req.End, "type", req.PortType)
	params := url.Values{}
	params.Set("port_list_id", req.PortListID)
	params.Set("port_range_start", strconv.Itoa(req.Start))
	params.Set("port_range_end", strconv.Itoa(req.End))
	params.Set("port_type", req.PortType)
	if req.Comment != "" {
		params.Set("comment", req.Comment)
	}

	body, err := c.post(ctx, "create_port_range", params)
	if err != nil {
		return nil, err
	}
	return actionResponse("create_port_range", body)
}

func (c *Client) DeletePortRange(ctx context.Context, id string) error {
	slog.Info("deleting port range", "id", id)
	params := url.Values{}
	params.Set("port_range_id", id)

	_, err := c.post(ctx, "delete_port_range", params)
	return err
}

// FormatPortRangeSpec renders ranges in the "T:1-1024,U:53" form that
// create_port_list accepts.
func FormatPortRangeSpec(ranges []PortRange) string {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		prefix := "T"
		if strings.EqualFold(r.Protocol, "udp") {
			prefix = "U"
		}
		if r.Start == r.End {
			parts = append(parts, fmt.Sprintf("%s:%d", prefix, r.Start))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d-%d", prefix, r.Start, r.End))
	}
	return strings.Join(parts, ",")
}
