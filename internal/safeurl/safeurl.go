// Package safeurl guards outbound media fetches against SSRF: only public
// http(s) hosts pass, and IPFS content addresses are validated before being
// resolved through a gateway.
package safeurl

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var (
	cidV0Pattern = regexp.MustCompile(`^Qm[1-9A-HJ-NP-Za-km-z]{44}$`)
	cidV1Pattern = regexp.MustCompile(`^bafy[a-z2-7]{20,}$`)
)

// ValidateURL returns the URL unchanged if it is safe to fetch, or an error
// naming why it was rejected. Hostnames are checked literally; no DNS
// resolution is performed here, so redirect targets must be re-validated by
// the caller.
func ValidateURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scheme %q is not allowed", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("url has no host")
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return "", fmt.Errorf("host %q is not allowed", host)
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(host) {
		return "", fmt.Errorf("host %q resolves to a private address", host)
	}
	return raw, nil
}

// IsPrivateIP reports whether the literal addr is loopback, private,
// link-local or otherwise unroutable. Unparseable input counts as private:
// anything we cannot classify is unsafe to fetch.
func IsPrivateIP(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return true
	}
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}

// IsValidIPFSCID reports whether s looks like a CIDv0 (Qm..., 46 chars,
// base58) or CIDv1 (bafy..., base32) content identifier.
func IsValidIPFSCID(s string) bool {
	return cidV0Pattern.MatchString(s) || cidV1Pattern.MatchString(s)
}
