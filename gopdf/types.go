package gopdf

// WatermarkType selects how the server renders a watermark
type WatermarkType int

const (
	// WatermarkText renders a text watermark
	WatermarkText WatermarkType = 1
	// WatermarkImage renders an image watermark
	WatermarkImage WatermarkType = 2
	// WatermarkPDF stamps an existing PDF onto each page
	WatermarkPDF WatermarkType = 3
)

// Margin describes page margins. Empty sides are sent as null.
type Margin struct {
	Top    string
	Right  string
	Bottom string
	Left   string
}

// Cookie is a cookie the renderer sends when fetching the source
type Cookie struct {
	Name     string
	Value    string
	Secure   bool
	HTTPOnly bool
}

// Protection describes document encryption and permissions.
// Unset fields are sent as null so the server applies its defaults.
type Protection struct {
	Author        string
	UserPassword  string
	OwnerPassword string
	NoPrint       *bool
	NoCopy        *bool
	NoModify      *bool
}

// Bool returns a pointer to v
func Bool(v bool) *bool {
	return &v
}

// HostedFile is the descriptor returned when the server keeps the generated
// document (for two days) instead of sending its bytes back.
type HostedFile map[string]any

type margin struct {
	top, right, bottom, left string
}

type auth struct {
	username, password string
}

type cookie struct {
	name     string
	value    string
	secure   bool
	httpOnly bool
}

type headerFooter struct {
	source, spacing string
}

type protection struct {
	author        string
	userPassword  string
	ownerPassword string
	noPrint       *bool
	noCopy        *bool
	noModify      *bool
}

func (m *margin) render() map[string]any {
	return map[string]any{
		"top":    nullable(m.top),
		"right":  nullable(m.right),
		"bottom": nullable(m.bottom),
		"left":   nullable(m.left),
	}
}

func (a *auth) render() map[string]any {
	return map[string]any{
		"username": a.username,
		"password": a.password,
	}
}

func (c cookie) render() map[string]any {
	return map[string]any{
		"name":      c.name,
		"value":     nullable(c.value),
		"secure":    c.secure,
		"http_only": c.httpOnly,
	}
}

func (h *headerFooter) render() map[string]any {
	return map[string]any{
		"source":  h.source,
		"spacing": nullable(h.spacing),
	}
}

func (p *protection) render() map[string]any {
	return map[string]any{
		"author":         nullable(p.author),
		"user_password":  nullable(p.userPassword),
		"owner_password": nullable(p.ownerPassword),
		"no_print":       nullableBool(p.noPrint),
		"no_copy":        nullableBool(p.noCopy),
		"no_modify":      nullableBool(p.noModify),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
