package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/s0up4200/gopdfctl/gopdf"
)

// conversionFlags holds the option flags shared by conversion commands
type conversionFlags struct {
	filename      string
	margin        string
	auth          string
	cookies       []string
	httpHeaders   []string
	headerSource  string
	footerSource  string
	spacing       string
	author        string
	userPassword  string
	ownerPassword string
	noPrint       bool
	noCopy        bool
	noModify      bool
	watermark     []string
	set           []string
}

func (f *conversionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.filename, "filename", "", "ask the service to host the result under this name")
	fs.StringVar(&f.margin, "margin", "", "page margins: one value or top,right,bottom,left")
	fs.StringVar(&f.auth, "auth", "", "basic auth for the source page as user:pass")
	fs.StringArrayVar(&f.cookies, "cookie", nil, "cookie sent with the source request as name=value[;secure][;httponly] (repeatable)")
	fs.StringArrayVar(&f.httpHeaders, "http-header", nil, "HTTP header sent with the source request as Name=Value (repeatable)")
	fs.StringVar(&f.headerSource, "header-source", "", "HTML rendered as the page header")
	fs.StringVar(&f.footerSource, "footer-source", "", "HTML rendered as the page footer")
	fs.StringVar(&f.spacing, "spacing", "", "spacing between header/footer and content")
	fs.StringVar(&f.author, "author", "", "document author")
	fs.StringVar(&f.userPassword, "user-password", "", "password required to open the document")
	fs.StringVar(&f.ownerPassword, "owner-password", "", "password required to change permissions")
	fs.BoolVar(&f.noPrint, "no-print", false, "forbid printing")
	fs.BoolVar(&f.noCopy, "no-copy", false, "forbid copying content")
	fs.BoolVar(&f.noModify, "no-modify", false, "forbid modifications")
	fs.StringArrayVar(&f.watermark, "watermark", nil, "watermark option as key=value (repeatable)")
	fs.StringArrayVar(&f.set, "set", nil, "raw conversion option as key=value (repeatable)")
}

// apply copies the flags that were given onto req
func (f *conversionFlags) apply(req *gopdf.Request, fs *pflag.FlagSet) error {
	if f.margin != "" {
		m, err := parseMargin(f.margin)
		if err != nil {
			return err
		}
		req.SetMargin(m)
	}

	if f.auth != "" {
		user, pass, ok := strings.Cut(f.auth, ":")
		if !ok {
			return fmt.Errorf("invalid --auth %q: expected user:pass", f.auth)
		}
		req.SetAuth(user, pass)
	}

	for _, raw := range f.cookies {
		c, err := parseCookie(raw)
		if err != nil {
			return err
		}
		req.AddCookie(c.Name, c.Value, c.Secure, c.HTTPOnly)
	}

	for _, raw := range f.httpHeaders {
		name, value, err := parseKeyValue("http-header", raw)
		if err != nil {
			return err
		}
		req.AddHTTPHeader(name, value)
	}

	if f.headerSource != "" {
		req.SetHeader(f.headerSource, f.spacing)
	}
	if f.footerSource != "" {
		req.SetFooter(f.footerSource, f.spacing)
	}

	if p, ok := f.protection(fs); ok {
		req.Protect(p)
	}

	if len(f.watermark) > 0 {
		options, err := parseOptions("watermark", f.watermark)
		if err != nil {
			return err
		}
		req.Watermark(options)
	}

	if f.filename != "" {
		req.SetFilename(f.filename)
	}

	if len(f.set) > 0 {
		options, err := parseOptions("set", f.set)
		if err != nil {
			return err
		}
		req.Apply(options)
	}

	return nil
}

func (f *conversionFlags) protection(fs *pflag.FlagSet) (gopdf.Protection, bool) {
	p := gopdf.Protection{
		Author:        f.author,
		UserPassword:  f.userPassword,
		OwnerPassword: f.ownerPassword,
	}
	if fs.Changed("no-print") {
		p.NoPrint = gopdf.Bool(f.noPrint)
	}
	if fs.Changed("no-copy") {
		p.NoCopy = gopdf.Bool(f.noCopy)
	}
	if fs.Changed("no-modify") {
		p.NoModify = gopdf.Bool(f.noModify)
	}

	touched := p.Author != "" || p.UserPassword != "" || p.OwnerPassword != "" ||
		p.NoPrint != nil || p.NoCopy != nil || p.NoModify != nil
	return p, touched
}

// parseMargin accepts one value for all sides or four comma separated values
func parseMargin(raw string) (gopdf.Margin, error) {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 1:
		return gopdf.Margin{Top: parts[0], Right: parts[0], Bottom: parts[0], Left: parts[0]}, nil
	case 4:
		return gopdf.Margin{Top: parts[0], Right: parts[1], Bottom: parts[2], Left: parts[3]}, nil
	default:
		return gopdf.Margin{}, fmt.Errorf("invalid --margin %q: expected 1 or 4 values", raw)
	}
}

func parseCookie(raw string) (gopdf.Cookie, error) {
	parts := strings.Split(raw, ";")

	name, value, err := parseKeyValue("cookie", parts[0])
	if err != nil {
		return gopdf.Cookie{}, err
	}

	c := gopdf.Cookie{Name: name, Value: value}
	for _, attr := range parts[1:] {
		switch strings.ToLower(strings.TrimSpace(attr)) {
		case "secure":
			c.Secure = true
		case "httponly":
			c.HTTPOnly = true
		case "":
		default:
			return gopdf.Cookie{}, fmt.Errorf("invalid --cookie %q: unknown attribute %q", raw, attr)
		}
	}
	return c, nil
}

func parseKeyValue(flag, raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid --%s %q: expected key=value", flag, raw)
	}
	return key, value, nil
}

// parseOptions turns key=value pairs into an options map. Values that parse
// as JSON keep their JSON type, anything else is a string.
func parseOptions(flag string, pairs []string) (map[string]any, error) {
	options := make(map[string]any, len(pairs))
	for _, raw := range pairs {
		key, value, err := parseKeyValue(flag, raw)
		if err != nil {
			return nil, err
		}
		options[key] = parseValue(value)
	}
	return options, nil
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
