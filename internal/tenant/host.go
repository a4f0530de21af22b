package tenant

import "strings"

// HostInfo is the outcome of classifying an inbound Host header. Subdomain
// and CustomDomain are mutually exclusive: a host with three or more labels
// yields a subdomain, a two-label host outside the reserved root domains is a
// custom-domain candidate, anything else is the platform's own site.
type HostInfo struct {
	// Host is the bare hostname with any :port stripped.
	Host string
	// Subdomain is the leftmost label, or the label before the dev
	// suffix. Empty when the host carries no subdomain.
	Subdomain string
	// CustomDomain reports whether the bare host itself may name a
	// tenant's custom domain.
	CustomDomain bool
}

// ClassifyHost splits an inbound Host header into its tenant-relevant parts.
//
//	vendor1.stormcom.app  -> subdomain "vendor1"
//	vendor1.localhost     -> subdomain "vendor1" (dev suffix)
//	vendor.com            -> custom-domain candidate
//	stormcom.app          -> neither (reserved root domain)
//	www.stormcom.app      -> subdomain "www" (filtered by the resolver)
func ClassifyHost(hostport string, rootDomains []string, devSuffix string) HostInfo {
	host := hostport
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	info := HostInfo{Host: host}

	if devSuffix != "" && strings.HasSuffix(host, devSuffix) {
		info.Subdomain = strings.TrimSuffix(host, devSuffix)
		return info
	}

	parts := strings.Split(host, ".")
	switch {
	case len(parts) >= 3:
		info.Subdomain = parts[0]
	case len(parts) == 2 && !containsString(rootDomains, host):
		info.CustomDomain = true
	}

	return info
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
