package jsvalue

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

// URLData is the decomposed, shared state behind both a URL object and
// any URLSearchParams views derived from it: mutating params through
// either handle updates the same fields, since both the URL Object and
// its URLSearchParams Object point at this one struct.
type URLData struct {
	Protocol string
	Username string
	Password string
	Host     string // punycode-normalized, no port
	Port     string
	Pathname string
	Query    []kv // parsed "search", order-preserving like URLSearchParams.entries()
	Hash     string
}

type kv struct{ key, value string }

// ParseURL decomposes a URL string into protocol/username/password/host/
// port/pathname/search/hash, applying IDNA/punycode host normalization.
func ParseURL(raw string) (*URLData, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", raw)
	}
	host := u.Hostname()
	if ascii, err := idna.ToASCII(host); err == nil {
		host = ascii
	}
	password, _ := u.User.Password()
	d := &URLData{
		Protocol: u.Scheme + ":",
		Username: u.User.Username(),
		Password: password,
		Host:     host,
		Port:     u.Port(),
		Pathname: u.Path,
	}
	if u.Fragment != "" {
		d.Hash = "#" + u.Fragment
	}
	d.Query = parseQuery(u.RawQuery)
	return d, nil
}

func parseQuery(raw string) []kv {
	if raw == "" {
		return nil
	}
	var out []kv
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, _ := url.QueryUnescape(k)
		val, _ := url.QueryUnescape(v)
		out = append(out, kv{key, val})
	}
	return out
}

// HostWithPort reassembles "host:port", omitting the colon when Port is
// empty.
func (d *URLData) HostWithPort() string {
	if d.Port == "" {
		return d.Host
	}
	return d.Host + ":" + d.Port
}

// SearchString re-serializes Query as "?a=1&b=2", or "" when empty.
func (d *URLData) SearchString() string {
	if len(d.Query) == 0 {
		return ""
	}
	parts := make([]string, len(d.Query))
	for i, p := range d.Query {
		parts[i] = url.QueryEscape(p.key) + "=" + url.QueryEscape(p.value)
	}
	return "?" + strings.Join(parts, "&")
}

// String re-serializes the full URL deterministically.
func (d *URLData) String() string {
	var b strings.Builder
	b.WriteString(d.Protocol)
	b.WriteString("//")
	if d.Username != "" {
		b.WriteString(d.Username)
		if d.Password != "" {
			b.WriteByte(':')
			b.WriteString(d.Password)
		}
		b.WriteByte('@')
	}
	b.WriteString(d.HostWithPort())
	b.WriteString(d.Pathname)
	b.WriteString(d.SearchString())
	b.WriteString(d.Hash)
	return b.String()
}

// NewURLObject builds a ClassURL Object around freshly parsed data.
func NewURLObject(d *URLData) *Object {
	return &Object{Class: ClassURL, index: map[string]int{}, URL: d}
}

// NewURLParamsObject builds a ClassURLParams view. owner is nil for
// params constructed standalone (`new URLSearchParams("a=1")`), or the
// URL Object this view shares state with when derived via `url.searchParams`.
func NewURLParamsObject(d *URLData, owner *Object) *Object {
	return &Object{Class: ClassURLParams, index: map[string]int{}, URL: d, URLOwner: owner}
}

// Get/Set/Append/Delete/Sort on URLData implement the URLSearchParams
// surface the evaluator's method table dispatches to.

func (d *URLData) Get(key string) (string, bool) {
	for _, p := range d.Query {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

func (d *URLData) GetAll(key string) []string {
	var out []string
	for _, p := range d.Query {
		if p.key == key {
			out = append(out, p.value)
		}
	}
	return out
}

func (d *URLData) SetParam(key, value string) {
	found := false
	out := d.Query[:0]
	for _, p := range d.Query {
		if p.key == key {
			if !found {
				out = append(out, kv{key, value})
				found = true
			}
			continue
		}
		out = append(out, p)
	}
	if !found {
		out = append(out, kv{key, value})
	}
	d.Query = out
}

func (d *URLData) Append(key, value string) {
	d.Query = append(d.Query, kv{key, value})
}

func (d *URLData) DeleteParam(key string) {
	var out []kv
	for _, p := range d.Query {
		if p.key != key {
			out = append(out, p)
		}
	}
	d.Query = out
}

func (d *URLData) HasParam(key string) bool {
	_, ok := d.Get(key)
	return ok
}

func (d *URLData) SortParams() {
	sort.SliceStable(d.Query, func(i, j int) bool { return d.Query[i].key < d.Query[j].key })
}

func (d *URLData) Entries() [][2]string {
	out := make([][2]string, len(d.Query))
	for i, p := range d.Query {
		out[i] = [2]string{p.key, p.value}
	}
	return out
}
