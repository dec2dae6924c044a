package discovery

import (
	"net"
	"reflect"
	"testing"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4 []net.IP, v6 []net.IP, txt []string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = txt
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
		wantMeta map[string]string
	}{
		{
			name: "IPv4 console",
			entry: entry("powerpack-prod", "laptop.local.", 7419,
				[]net.IP{net.ParseIP("192.168.4.16")}, nil,
				[]string{"instance=prod", "path=/shell"}),
			wantIP:   "192.168.4.16",
			wantPort: 7419,
			wantMeta: map[string]string{"instance": "prod", "path": "/shell"},
		},
		{
			name: "IPv6 fallback",
			entry: entry("powerpack-dev", "box.local.", 9000,
				nil, []net.IP{net.ParseIP("fe80::1")},
				[]string{"flag"}),
			wantIP:   "fe80::1",
			wantPort: 9000,
			wantMeta: map[string]string{"flag": ""},
		},
		{
			name:    "no address",
			entry:   entry("powerpack-x", "x.local.", 7419, nil, nil, nil),
			wantNil: true,
		},
		{
			name:    "no port",
			entry:   entry("powerpack-x", "x.local.", 0, []net.IP{net.ParseIP("10.0.0.1")}, nil, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if c != nil {
					t.Fatalf("parseServiceEntry() = %v, want nil", c)
				}
				return
			}
			if c == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if c.IP != tt.wantIP || c.Port != tt.wantPort {
				t.Errorf("addr = %s:%d, want %s:%d", c.IP, c.Port, tt.wantIP, tt.wantPort)
			}
			if !reflect.DeepEqual(c.Metadata, tt.wantMeta) {
				t.Errorf("metadata = %v, want %v", c.Metadata, tt.wantMeta)
			}
			if c.Instance != tt.entry.Instance {
				t.Errorf("instance = %q, want %q", c.Instance, tt.entry.Instance)
			}
		})
	}
}

func TestTXTRecords(t *testing.T) {
	got := TXTRecords(map[string]string{"version": "1.0", "instance": "prod", "path": "/shell"})
	want := []string{"instance=prod", "path=/shell", "version=1.0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TXTRecords() = %v, want %v", got, want)
	}
}
