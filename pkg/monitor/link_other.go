//go:build !linux

package monitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/net"
)

// NicReader reads per-NIC counters through gopsutil. An empty interface
// name sums every non-loopback NIC.
type NicReader struct {
	name string
}

func NewCounterReader(name string) CounterReader {
	return &NicReader{name: name}
}

func (r *NicReader) Interface() string {
	if r.name == "" {
		return AllInterfaces
	}
	return r.name
}

func (r *NicReader) Read(ctx context.Context) (Counters, error) {
	stats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return Counters{}, fmt.Errorf("io counters: %w", err)
	}

	var c Counters
	found := false
	for _, st := range stats {
		if r.name != "" && st.Name != r.name {
			continue
		}
		if r.name == "" && strings.HasPrefix(st.Name, "lo") {
			continue
		}
		found = true
		c.RxBytes += st.BytesRecv
		c.TxBytes += st.BytesSent
	}
	if r.name != "" && !found {
		return Counters{}, fmt.Errorf("interface %s not found", r.name)
	}
	return c, nil
}
