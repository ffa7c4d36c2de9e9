// Package pagination computes page windows for offset/limit listings.
package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultPage is used when no page index is supplied
	DefaultPage = "0"
	// DefaultPageSize is used when no page size is supplied
	DefaultPageSize = "12"
	// MaxPageSize caps the rows fetched for a single page. Larger requests
	// are clamped to it.
	MaxPageSize = 1000
)

// ErrInvalidArgument is returned for page parameters that are not
// non-negative base-10 integers within range
var ErrInvalidArgument = errors.New("invalid argument")

var validate = validator.New()

// Request is a parsed and validated page request
type Request struct {
	Page     int `json:"page" validate:"gte=0"`
	PageSize int `json:"pageSize" validate:"gte=1,lte=1000"`
}

// Offset returns the zero-based index of the first row of the page
func (r Request) Offset() int64 {
	return int64(r.Page) * int64(r.PageSize)
}

// Descriptor is the computed page window and its navigation metadata
type Descriptor struct {
	Page          int
	PageSize      int
	TotalElements int64
	TotalPages    int64
	RangeStart    int64
	RangeEnd      int64 // inclusive, may point past the last row
	NextPage      *int
	PreviousPage  *int
}

// Empty reports whether the listing has no rows at all, in which case no
// row fetch is needed
func (d Descriptor) Empty() bool {
	return d.TotalElements == 0
}

// Limit returns the number of rows requested for the page
func (d Descriptor) Limit() int64 {
	return d.RangeEnd - d.RangeStart + 1
}

// ParseRequest parses the raw page and pageSize query values. Nil values
// take the defaults.
func ParseRequest(pageRaw, pageSizeRaw *string) (Request, error) {
	page, err := parseParam("page", pageRaw, DefaultPage)
	if err != nil {
		return Request{}, err
	}

	size, err := parseParam("pageSize", pageSizeRaw, DefaultPageSize)
	if err != nil {
		return Request{}, err
	}

	if size > MaxPageSize {
		size = MaxPageSize
	}

	req := Request{Page: page, PageSize: size}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return Request{}, fmt.Errorf("%w: %s must satisfy %s=%s", ErrInvalidArgument, lowerFirst(fe.Field()), fe.Tag(), fe.Param())
		}
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	return req, nil
}

func parseParam(name string, raw *string, fallback string) (int, error) {
	value := fallback
	if raw != nil {
		value = strings.TrimSpace(*raw)
	}

	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidArgument, name, value)
	}
	return int(n), nil
}

// Compute derives the page window for a request against totalElements rows
func Compute(req Request, totalElements int64) Descriptor {
	d := Descriptor{
		Page:          req.Page,
		PageSize:      req.PageSize,
		TotalElements: totalElements,
		RangeStart:    req.Offset(),
		RangeEnd:      req.Offset() + int64(req.PageSize) - 1,
	}

	if totalElements <= 0 {
		d.TotalElements = 0
		d.TotalPages = 1
		return d
	}

	size := int64(req.PageSize)
	d.TotalPages = (totalElements + size - 1) / size

	if int64(req.Page)+1 < d.TotalPages {
		next := req.Page + 1
		d.NextPage = &next
	}
	if req.Page > 0 {
		prev := req.Page - 1
		d.PreviousPage = &prev
	}

	return d
}

// ComputePage parses the raw query values and computes the descriptor
func ComputePage(pageRaw, pageSizeRaw *string, totalElements int64) (Descriptor, error) {
	req, err := ParseRequest(pageRaw, pageSizeRaw)
	if err != nil {
		return Descriptor{}, err
	}
	return Compute(req, totalElements), nil
}

// Page is the paginated listing returned to callers
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	NextPage      *int  `json:"nextPage,omitempty"`
	PreviousPage  *int  `json:"previousPage,omitempty"`
}

// NewPage wraps content in the descriptor's metadata. Content is never nil so
// an empty page serializes as [].
func NewPage[T any](d Descriptor, content []T) Page[T] {
	if content == nil || d.Empty() {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: d.TotalElements,
		TotalPages:    d.TotalPages,
		Page:          d.Page,
		PageSize:      d.PageSize,
		NextPage:      d.NextPage,
		PreviousPage:  d.PreviousPage,
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
