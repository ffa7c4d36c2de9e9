package pagination

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseRequest_Defaults(t *testing.T) {
	req, err := ParseRequest(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Request{Page: 0, PageSize: 12}, req)
}

func TestParseRequest_Invalid(t *testing.T) {
	cases := map[string]struct {
		page, size *string
	}{
		"non-numeric page":    {page: strPtr("abc")},
		"non-numeric size":    {size: strPtr("twelve")},
		"fractional page":     {page: strPtr("1.5")},
		"empty page":          {page: strPtr("")},
		"negative page":       {page: strPtr("-1")},
		"zero size":           {size: strPtr("0")},
		"overflowing page":    {page: strPtr("99999999999")},
		"hex is not base ten": {page: strPtr("0x10")},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRequest(tc.page, tc.size)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestParseRequest_ClampsPageSize(t *testing.T) {
	for _, raw := range []string{strconv.Itoa(MaxPageSize + 1), "5000", strconv.Itoa(1 << 30)} {
		req, err := ParseRequest(nil, strPtr(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, MaxPageSize, req.PageSize, raw)
	}

	req, err := ParseRequest(nil, strPtr(strconv.Itoa(MaxPageSize)))
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, req.PageSize)
}

func TestParseRequest_TrimsWhitespace(t *testing.T) {
	req, err := ParseRequest(strPtr(" 3 "), strPtr("08"))
	require.NoError(t, err)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 8, req.PageSize)
}

func TestCompute_EmptyListing(t *testing.T) {
	for _, req := range []Request{{Page: 0, PageSize: 12}, {Page: 7, PageSize: 3}} {
		d := Compute(req, 0)
		assert.True(t, d.Empty())
		assert.Equal(t, int64(1), d.TotalPages)
		assert.Nil(t, d.NextPage)
		assert.Nil(t, d.PreviousPage)

		page := NewPage[string](d, nil)
		assert.NotNil(t, page.Content)
		assert.Len(t, page.Content, 0)
	}
}

func TestCompute_FirstPage(t *testing.T) {
	d := Compute(Request{Page: 0, PageSize: 12}, 25)

	assert.Equal(t, int64(3), d.TotalPages)
	assert.Equal(t, int64(0), d.RangeStart)
	assert.Equal(t, int64(11), d.RangeEnd)
	require.NotNil(t, d.NextPage)
	assert.Equal(t, 1, *d.NextPage)
	assert.Nil(t, d.PreviousPage)
}

func TestCompute_LastPage(t *testing.T) {
	d := Compute(Request{Page: 2, PageSize: 12}, 25)

	assert.Equal(t, int64(24), d.RangeStart)
	assert.Equal(t, int64(35), d.RangeEnd)
	assert.Nil(t, d.NextPage)
	require.NotNil(t, d.PreviousPage)
	assert.Equal(t, 1, *d.PreviousPage)
}

func TestCompute_BeyondLastPage(t *testing.T) {
	d := Compute(Request{Page: 10, PageSize: 12}, 25)

	assert.Equal(t, int64(3), d.TotalPages)
	assert.Nil(t, d.NextPage)
	require.NotNil(t, d.PreviousPage)
	assert.Equal(t, 9, *d.PreviousPage)
}

func TestCompute_Properties(t *testing.T) {
	for total := int64(1); total <= 60; total++ {
		for size := 1; size <= 13; size++ {
			wantPages := (total + int64(size) - 1) / int64(size)
			for page := 0; int64(page) < wantPages; page++ {
				d := Compute(Request{Page: page, PageSize: size}, total)

				assert.Equal(t, wantPages, d.TotalPages)
				assert.Equal(t, int64(size), d.RangeEnd-d.RangeStart+1)
				assert.Equal(t, int64(size), d.Limit())
				assert.Equal(t, int64(page+1) < d.TotalPages, d.NextPage != nil)
				assert.Equal(t, page > 0, d.PreviousPage != nil)
			}
		}
	}
}

func TestComputePage(t *testing.T) {
	d, err := ComputePage(strPtr("1"), strPtr("10"), 25)
	require.NoError(t, err)
	assert.Equal(t, int64(10), d.RangeStart)
	assert.Equal(t, int64(19), d.RangeEnd)

	_, err = ComputePage(strPtr("one"), nil, 25)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPage_JSON(t *testing.T) {
	d := Compute(Request{Page: 0, PageSize: 2}, 3)
	body, err := json.Marshal(NewPage(d, []int{1, 2}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"content":[1,2],"totalElements":3,"totalPages":2,"page":0,"pageSize":2,"nextPage":1}`, string(body))

	empty, err := json.Marshal(NewPage[int](Compute(Request{Page: 0, PageSize: 12}, 0), nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[],"totalElements":0,"totalPages":1,"page":0,"pageSize":12}`, string(empty))
}
