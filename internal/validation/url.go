package validation

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL       = errors.New("URL is empty")
	ErrUnsupportedURL = errors.New("URL must use http or https")
	ErrDisallowedHost = errors.New("URL host is not allowed")
	ErrMalformedURL   = errors.New("URL is malformed")
)

// LinkValidator checks article links before they are handed to a browser,
// an image viewer or the full-text fetcher.
type LinkValidator struct {
	// AllowLocalhost permits localhost and loopback addresses
	AllowLocalhost bool
	// AllowPrivateIPs permits private and link-local addresses
	AllowPrivateIPs bool
	MaxLength       int
}

func NewLinkValidator() *LinkValidator {
	return &LinkValidator{
		MaxLength: 2048,
	}
}

// NewPermissiveLinkValidator allows local addresses, for development servers
// and tests.
func NewPermissiveLinkValidator() *LinkValidator {
	return &LinkValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// Validate parses raw and returns it if it is an absolute http(s) URL with an
// acceptable host. Links from the API are never rewritten, so a missing
// scheme is an error rather than something to guess.
func (v *LinkValidator) Validate(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURL
	}
	if v.MaxLength > 0 && len(raw) > v.MaxLength {
		return nil, fmt.Errorf("%w: longer than %d characters", ErrMalformedURL, v.MaxLength)
	}
	if strings.ContainsAny(raw, "<>\"`\n\r\t ") {
		return nil, fmt.Errorf("%w: contains invalid characters", ErrMalformedURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedURL, u.Scheme)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return nil, fmt.Errorf("%w: missing host", ErrMalformedURL)
	}
	if err := v.checkHost(hostname); err != nil {
		return nil, err
	}

	return u, nil
}

// ValidString is Validate for callers that only need the cleaned string.
func (v *LinkValidator) ValidString(raw string) (string, error) {
	u, err := v.Validate(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (v *LinkValidator) checkHost(hostname string) error {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("%w: %s is local", ErrDisallowedHost, hostname)
	}

	addr, err := netip.ParseAddr(hostname)
	if err != nil {
		return nil
	}
	addr = addr.Unmap()

	if addr.IsUnspecified() || addr == netip.AddrFrom4([4]byte{255, 255, 255, 255}) {
		return fmt.Errorf("%w: %s", ErrDisallowedHost, hostname)
	}
	if !v.AllowLocalhost && addr.IsLoopback() {
		return fmt.Errorf("%w: %s is loopback", ErrDisallowedHost, hostname)
	}
	if !v.AllowPrivateIPs && (addr.IsPrivate() || addr.IsLinkLocalUnicast()) {
		return fmt.Errorf("%w: %s is private", ErrDisallowedHost, hostname)
	}
	return nil
}

func isLocalhost(hostname string) bool {
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}
