package gmp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portListEnvelope = `<envelope>
  <token>tok</token>
  <get_port_list>
    <get_port_lists_response status="200" status_text="OK">
      <port_list id="pl1">
        <owner><name>admin</name></owner>
        <name>Web</name>
        <comment>web ports</comment>
        <in_use>1</in_use>
        <writable>1</writable>
        <port_count><all>1024</all><tcp>1024</tcp><udp>0</udp></port_count>
        <port_ranges>
          <port_range id="r1"><start>1</start><end>1024</end><type>TCP</type><comment/></port_range>
        </port_ranges>
      </port_list>
    </get_port_lists_response>
  </get_port_list>
</envelope>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL, Username: "admin", Password: "secret"})
	require.NoError(t, err)
	client.SetToken("tok")
	return client
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: ""})
	require.Error(t, err)

	_, err = NewClient(Options{BaseURL: "ftp://manager"})
	require.Error(t, err)
}

func TestLoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "login", r.PostForm.Get("cmd"))
		assert.Equal(t, "admin", r.PostForm.Get("login"))
		_, _ = w.Write([]byte(`<envelope><token>fresh</token></envelope>`))
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseURL: server.URL, Username: "admin", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, "fresh", client.Token())
}

func TestGetPortList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/gmp", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "get_port_list", q.Get("cmd"))
		assert.Equal(t, "pl1", q.Get("port_list_id"))
		assert.Equal(t, "tok", q.Get("token"))
		_, _ = w.Write([]byte(portListEnvelope))
	})

	pl, err := client.GetPortList(context.Background(), "pl1")
	require.NoError(t, err)
	assert.Equal(t, "Web", pl.Name)
	assert.Equal(t, "admin", pl.Owner)
	assert.True(t, pl.InUse)
	assert.Equal(t, 1024, pl.Count.TCP)
	require.Len(t, pl.PortRanges, 1)
	assert.Equal(t, PortRange{ID: "r1", Start: 1, End: 1024, Protocol: "tcp", EntityType: EntityTypePortRange}, pl.PortRanges[0])
}

func TestGetPortListMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<envelope><get_port_list><get_port_lists_response status="200"/></get_port_list></envelope>`))
	})

	_, err := client.GetPortList(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePortRangeSendsForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "create_port_range", r.PostForm.Get("cmd"))
		assert.Equal(t, "pl1", r.PostForm.Get("port_list_id"))
		assert.Equal(t, "2000", r.PostForm.Get("port_range_start"))
		assert.Equal(t, "3000", r.PostForm.Get("port_range_end"))
		assert.Equal(t, "tcp", r.PostForm.Get("port_type"))
		_, _ = w.Write([]byte(`<envelope><action_result><action>Create Port Range</action><id>r9</id><message>OK</message></action_result></envelope>`))
	})

	resp, err := client.CreatePortRange(context.Background(), CreatePortRangeRequest{
		PortListID: "pl1",
		Start:      2000,
		End:        3000,
		PortType:   "tcp",
	})
	require.NoError(t, err)
	assert.Equal(t, "r9", resp.ID)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "forbidden", status: http.StatusForbidden, want: ErrPermissionDenied},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`<envelope><action_result><message>nope</message></action_result></envelope>`))
			})
			err := client.DeletePortRange(context.Background(), "r1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "nope", apiErr.Message)
			assert.Equal(t, "delete_port_range", apiErr.Command)
		})
	}
}

func TestExpiredTokenTriggersRelogin(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch r.Form.Get("cmd") {
		case "login":
			_, _ = w.Write([]byte(`<envelope><token>renewed</token></envelope>`))
		case "delete_port_list":
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, "renewed", r.Form.Get("token"))
			_, _ = w.Write([]byte(`<envelope><action_result><message>OK</message></action_result></envelope>`))
		}
	})

	require.NoError(t, client.DeletePortList(context.Background(), "pl1"))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "renewed", client.Token())
}

func TestPortListXMLRoundTrip(t *testing.T) {
	in := &PortList{
		ID:   "pl1",
		Name: "Web",
		PortRanges: []PortRange{
			{ID: "r1", Start: 1, End: 1024, Protocol: "tcp"},
			{ID: "r2", Start: 53, End: 53, Protocol: "udp"},
		},
	}
	data, err := MarshalPortListXML(in)
	require.NoError(t, err)

	out, err := ParsePortListXML(data)
	require.NoError(t, err)
	assert.Equal(t, "Web", out.Name)
	require.Len(t, out.PortRanges, 2)
	assert.Equal(t, "udp", out.PortRanges[1].Protocol)
}

func TestFormatPortRangeSpec(t *testing.T) {
	got := FormatPortRangeSpec([]PortRange{
		{Start: 1, End: 1024, Protocol: "tcp"},
		{Start: 53, End: 53, Protocol: "udp"},
	})
	assert.Equal(t, "T:1-1024,U:53", got)
}
