package gopdf

import (
	"maps"
	"slices"
)

// Option keys understood by the conversion API
const (
	KeySource      = "source"
	KeyMargin      = "margin"
	KeyAuth        = "auth"
	KeyCookies     = "cookies"
	KeyHTTPHeaders = "http_headers"
	KeyHeader      = "header"
	KeyFooter      = "footer"
	KeyProtection  = "protection"
	KeyWatermark   = "watermark"
	KeyFilename    = "filename"
)

// Request accumulates the options of a single conversion.
//
// Every setter mutates the request and returns it for chaining. A Request is
// not safe for concurrent use; create one per in-flight conversion.
type Request struct {
	client *Client

	source      *string
	margin      *margin
	auth        *auth
	cookies     []cookie
	httpHeaders map[string]string
	header      *headerFooter
	footer      *headerFooter
	protection  *protection
	watermark   map[string]any
	filename    *string

	// options without a dedicated setter, and typed keys written through Set
	extra map[string]any

	result *Result
}

// SetMargin replaces the page margins. Sides left empty are sent as null.
func (r *Request) SetMargin(m Margin) *Request {
	r.claim(KeyMargin)
	r.margin = &margin{top: m.Top, right: m.Right, bottom: m.Bottom, left: m.Left}
	return r
}

// SetAuth replaces the HTTP credentials used to fetch the source
func (r *Request) SetAuth(username, password string) *Request {
	r.claim(KeyAuth)
	r.auth = &auth{username: username, password: password}
	return r
}

// AddCookie appends a cookie sent when fetching the source. A cookie list
// stored through Set or Apply is extended rather than replaced.
func (r *Request) AddCookie(name, value string, secure, httpOnly bool) *Request {
	c := cookie{name: name, value: value, secure: secure, httpOnly: httpOnly}

	if list, ok := rawList(r.extra[KeyCookies]); ok {
		r.extra[KeyCookies] = append(list, c.render())
		return r
	}

	r.claim(KeyCookies)
	if r.cookies == nil {
		r.cookies = []cookie{}
	}
	r.cookies = append(r.cookies, c)
	return r
}

// SetCookies appends every cookie in order. Existing cookies are kept;
// call ClearCookies first to start over.
func (r *Request) SetCookies(cookies []Cookie) *Request {
	for _, c := range cookies {
		r.AddCookie(c.Name, c.Value, c.Secure, c.HTTPOnly)
	}
	return r
}

// ClearCookies empties the cookie list
func (r *Request) ClearCookies() *Request {
	r.claim(KeyCookies)
	r.cookies = []cookie{}
	return r
}

// AddHTTPHeader sets one HTTP header sent when fetching the source. A header
// mapping stored through Set or Apply keeps its other entries.
func (r *Request) AddHTTPHeader(name, value string) *Request {
	if headers, ok := rawMap(r.extra[KeyHTTPHeaders]); ok {
		headers[name] = nullable(value)
		r.extra[KeyHTTPHeaders] = headers
		return r
	}

	r.claim(KeyHTTPHeaders)
	if r.httpHeaders == nil {
		r.httpHeaders = make(map[string]string)
	}
	r.httpHeaders[name] = value
	return r
}

// SetHTTPHeaders adds every header. Existing headers with other names are kept.
func (r *Request) SetHTTPHeaders(headers map[string]string) *Request {
	for name, value := range headers {
		r.AddHTTPHeader(name, value)
	}
	return r
}

// ClearHTTPHeaders empties the HTTP header mapping
func (r *Request) ClearHTTPHeaders() *Request {
	r.claim(KeyHTTPHeaders)
	r.httpHeaders = make(map[string]string)
	return r
}

// SetHeader replaces the page header template
func (r *Request) SetHeader(source, spacing string) *Request {
	r.claim(KeyHeader)
	r.header = &headerFooter{source: source, spacing: spacing}
	return r
}

// SetFooter replaces the page footer template
func (r *Request) SetFooter(source, spacing string) *Request {
	r.claim(KeyFooter)
	r.footer = &headerFooter{source: source, spacing: spacing}
	return r
}

// Protect replaces the document protection settings
func (r *Request) Protect(p Protection) *Request {
	r.claim(KeyProtection)
	r.protection = &protection{
		author:        p.Author,
		userPassword:  p.UserPassword,
		ownerPassword: p.OwnerPassword,
		noPrint:       p.NoPrint,
		noCopy:        p.NoCopy,
		noModify:      p.NoModify,
	}
	return r
}

// Watermark stores the watermark options as given
func (r *Request) Watermark(options map[string]any) *Request {
	r.claim(KeyWatermark)
	if options == nil {
		options = map[string]any{}
	}
	r.watermark = options
	return r
}

// SetFilename asks the server to keep the document and answer with a
// HostedFile descriptor instead of the document bytes.
func (r *Request) SetFilename(filename string) *Request {
	r.claim(KeyFilename)
	r.filename = &filename
	return r
}

// Set stores an arbitrary option. Writing a key that also has a dedicated
// setter replaces whatever that setter stored.
func (r *Request) Set(key string, value any) *Request {
	r.dropTyped(key)
	if r.extra == nil {
		r.extra = make(map[string]any)
	}
	r.extra[key] = value
	return r
}

// Get returns the current value of an option, or nil when it is unset
func (r *Request) Get(key string) any {
	return r.Options()[key]
}

// Apply calls Set for every entry of options
func (r *Request) Apply(options map[string]any) *Request {
	for key, value := range options {
		r.Set(key, value)
	}
	return r
}

// Options renders the options mapping exactly as it is sent to the server
func (r *Request) Options() map[string]any {
	opts := make(map[string]any, len(r.extra)+10)

	if r.source != nil {
		opts[KeySource] = *r.source
	}
	if r.margin != nil {
		opts[KeyMargin] = r.margin.render()
	}
	if r.auth != nil {
		opts[KeyAuth] = r.auth.render()
	}
	if r.cookies != nil {
		cookies := make([]any, 0, len(r.cookies))
		for _, c := range r.cookies {
			cookies = append(cookies, c.render())
		}
		opts[KeyCookies] = cookies
	}
	if r.httpHeaders != nil {
		headers := make(map[string]any, len(r.httpHeaders))
		for name, value := range r.httpHeaders {
			headers[name] = nullable(value)
		}
		opts[KeyHTTPHeaders] = headers
	}
	if r.header != nil {
		opts[KeyHeader] = r.header.render()
	}
	if r.footer != nil {
		opts[KeyFooter] = r.footer.render()
	}
	if r.protection != nil {
		opts[KeyProtection] = r.protection.render()
	}
	if r.watermark != nil {
		opts[KeyWatermark] = r.watermark
	}
	if r.filename != nil {
		opts[KeyFilename] = *r.filename
	}

	for key, value := range r.extra {
		opts[key] = value
	}

	return opts
}

// Result returns the outcome of the last successful conversion, or nil
func (r *Request) Result() *Result {
	return r.result
}

// hosted reports whether the server will answer with a HostedFile
func (r *Request) hosted() bool {
	return r.Get(KeyFilename) != nil
}

// claim removes an untyped value so a typed setter owns the key again
func (r *Request) claim(key string) {
	delete(r.extra, key)
}

func (r *Request) dropTyped(key string) {
	switch key {
	case KeySource:
		r.source = nil
	case KeyMargin:
		r.margin = nil
	case KeyAuth:
		r.auth = nil
	case KeyCookies:
		r.cookies = nil
	case KeyHTTPHeaders:
		r.httpHeaders = nil
	case KeyHeader:
		r.header = nil
	case KeyFooter:
		r.footer = nil
	case KeyProtection:
		r.protection = nil
	case KeyWatermark:
		r.watermark = nil
	case KeyFilename:
		r.filename = nil
	}
}

// rawList copies a list stored through Set so it can be appended to
func rawList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return slices.Clone(list), true
	case []map[string]any:
		out := make([]any, 0, len(list)+1)
		for _, item := range list {
			out = append(out, item)
		}
		return out, true
	default:
		return nil, false
	}
}

// rawMap copies a mapping stored through Set so it can be extended
func rawMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		if m == nil {
			return make(map[string]any, 1), true
		}
		return maps.Clone(m), true
	case map[string]string:
		out := make(map[string]any, len(m)+1)
		for name, value := range m {
			out[name] = value
		}
		return out, true
	default:
		return nil, false
	}
}
