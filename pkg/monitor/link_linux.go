//go:build linux

package monitor

import (
	"context"
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// LinkReader reads interface statistics over netlink. An empty interface
// name sums every non-loopback link.
type LinkReader struct {
	name string
}

func NewCounterReader(name string) CounterReader {
	return &LinkReader{name: name}
}

func (r *LinkReader) Interface() string {
	if r.name == "" {
		return AllInterfaces
	}
	return r.name
}

func (r *LinkReader) Read(ctx context.Context) (Counters, error) {
	if r.name != "" {
		link, err := netlink.LinkByName(r.name)
		if err != nil {
			return Counters{}, fmt.Errorf("link %s: %w", r.name, err)
		}
		return linkCounters(link), nil
	}

	links, err := netlink.LinkList()
	if err != nil {
		return Counters{}, fmt.Errorf("list links: %w", err)
	}

	var c Counters
	for _, link := range links {
		if link.Attrs().Flags&net.FlagLoopback != 0 {
			continue
		}
		lc := linkCounters(link)
		c.RxBytes += lc.RxBytes
		c.TxBytes += lc.TxBytes
	}
	return c, nil
}

func linkCounters(link netlink.Link) Counters {
	st := link.Attrs().Statistics
	if st == nil {
		return Counters{}
	}
	return Counters{RxBytes: st.RxBytes, TxBytes: st.TxBytes}
}
