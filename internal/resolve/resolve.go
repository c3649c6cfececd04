// Package resolve resolves the configured upstream host to an address
// before the relay session dials it.
package resolve

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// queryTimeout bounds a single DNS exchange.
const queryTimeout = 5 * time.Second

// fallbackResolver is used when /etc/resolv.conf can't be read or lists no
// servers.
const fallbackResolver = "8.8.8.8:53"

// Resolve returns the IP address for host. A literal IPv4/IPv6 address is
// returned unchanged without issuing a query. Otherwise host is queried
// directly against the configured nameserver; if that query errors or
// comes back with no answer (as it will for names like "localhost" that
// live only in /etc/hosts, not in any nameserver's zone), Resolve falls
// back to the system's own host lookup, which does consult /etc/hosts.
func Resolve(host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}

	if ip, err := queryDirect(host); err == nil {
		return ip, nil
	}

	return resolveViaSystem(host)
}

// queryDirect issues a single A-record query against the configured
// nameserver, bypassing the OS resolver and its cache.
func queryDirect(host string) (net.IP, error) {
	upstream := systemResolver()

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)

	c := &dns.Client{Timeout: queryTimeout}
	resp, _, err := c.Exchange(m, upstream)
	if err != nil {
		return nil, fmt.Errorf("query %s via %s: %w", host, upstream, err)
	}

	for _, ans := range resp.Answer {
		if a, ok := ans.(*dns.A); ok {
			return a.A, nil
		}
	}

	return nil, fmt.Errorf("no A record for %s via %s", host, upstream)
}

// resolveViaSystem falls back to the platform's own resolver, which
// consults /etc/hosts (and any other configured name sources) ahead of the
// network, so names like "localhost" resolve even when the configured
// nameserver doesn't carry them.
func resolveViaSystem(host string) (net.IP, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil || len(ips) == 0 {
		ips, err = net.DefaultResolver.LookupIP(ctx, "ip", host)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no address found for %s", host)
	}
	return ips[0], nil
}

// systemResolver reads /etc/resolv.conf for the first configured
// nameserver, falling back to a public resolver if none is configured or
// readable.
func systemResolver() string {
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(cfg.Servers) == 0 {
		return fallbackResolver
	}
	return net.JoinHostPort(cfg.Servers[0], cfg.Port)
}
