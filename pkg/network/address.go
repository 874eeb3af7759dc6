package network

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

type Address string

func (a *Address) Port() (int, error) {
	if len(string(*a)) == 0 {
		return 0, errors.New("no address")
	}
	parts := strings.Split(string(*a), ":")
	var port string
	if len(parts) == 1 {
		port = parts[0]
	} else {
		port = parts[len(parts)-1]
	}
	if val, err := strconv.Atoi(port); err == nil {
		return val, nil
	}
	return 0, errors.New("port is not a number")
}

// Host returns the address with the port part stripped.
func (a *Address) Host() string {
	if host, _, err := net.SplitHostPort(string(*a)); err == nil {
		return host
	}
	return string(*a)
}

// IsPrivate says whether the address host belongs to a private network:
// RFC1918 IPv4 ranges, v4/v6 loopback, IPv6 unique-local (fc00::/7) and
// link-local (fe80::/10) prefixes. Unparsable hosts are not private.
func (a *Address) IsPrivate() bool {
	ip := net.ParseIP(a.Host())
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
