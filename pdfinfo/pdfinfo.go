// Package pdfinfo inspects converted documents with pdfcpu.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrEmpty is returned for an empty document
var ErrEmpty = errors.New("document is empty")

// Info summarizes a PDF document
type Info struct {
	Pages     int    `json:"pages"`
	Version   string `json:"version"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Producer  string `json:"producer,omitempty"`
	Encrypted bool   `json:"encrypted"`
	Size      int    `json:"size"`
}

// Inspect validates data as a PDF and reports its metadata. password is
// used for documents protected with a user password and may be empty.
func Inspect(data []byte, password string) (*Info, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}

	return &Info{
		Pages:     ctx.PageCount,
		Version:   ctx.VersionString(),
		Title:     ctx.Title,
		Author:    ctx.Author,
		Creator:   ctx.Creator,
		Producer:  ctx.Producer,
		Encrypted: ctx.Encrypt != nil,
		Size:      len(data),
	}, nil
}

// InspectReader reads r fully and inspects the result
func InspectReader(r io.Reader, password string) (*Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Inspect(data, password)
}
