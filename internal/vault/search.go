package vault

import (
	"net/url"
	"sort"
	"strings"
)

// Search returns non-deleted items whose name, username, or url
// contains query as a case-insensitive substring, ordered by name
// ascending with ties broken by id.
func (c *Controller) Search(query string) ([]VaultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return nil, ErrLocked
	}

	q := strings.ToLower(query)
	var out []VaultItem
	for _, it := range c.vault.Items {
		if it.IsDeleted {
			continue
		}
		if strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Username), q) ||
			strings.Contains(strings.ToLower(it.URL), q) {
			out = append(out, it.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FindByURL returns non-deleted items whose stored url shares a domain
// with candidate: either an exact match after normalization, or a
// parent/subdomain relationship separated by a dot (docs.example.com
// matches example.com in either direction). Scheme, port, and a
// leading "www." are ignored.
func (c *Controller) FindByURL(candidate string) ([]VaultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return nil, ErrLocked
	}

	target := normalizeDomain(candidate)
	if target == "" {
		return nil, nil
	}

	var out []VaultItem
	for _, it := range c.vault.Items {
		if it.IsDeleted {
			continue
		}
		d := normalizeDomain(it.URL)
		if d == "" {
			continue
		}
		if domainsMatch(d, target) {
			out = append(out, it.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// normalizeDomain extracts the lowercase host from a URL or bare
// domain, strips a leading "www." and any port, and ignores scheme.
func normalizeDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	host := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		host = u.Host
	} else if strings.Contains(raw, "/") {
		u, err := url.Parse("//" + raw)
		if err == nil {
			host = u.Host
		}
	}
	if h, _, err := splitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

// splitHostPort strips a trailing ":port" without requiring the
// "missing port" errors net.SplitHostPort returns for bare hosts.
func splitHostPort(host string) (string, string, error) {
	idx := strings.LastIndex(host, ":")
	if idx < 0 {
		return host, "", nil
	}
	return host[:idx], host[idx+1:], nil
}

// domainsMatch reports whether a and b are the same domain or one is a
// dot-separated suffix of the other.
func domainsMatch(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasSuffix(a, "."+b) || strings.HasSuffix(b, "."+a)
}
