package repository_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/community-hub-service/internal/repository"
)

func TestPage_TotalPages_Bounded(t *testing.T) {
	for limit := 1; limit <= 12; limit++ {
		for total := int64(0); total <= 60; total++ {
			p := repository.NewPage(1, repository.Bounded(limit))
			want := int(math.Ceil(float64(total) / float64(limit)))
			assert.Equal(t, want, p.TotalPages(total), "limit=%d total=%d", limit, total)
		}
	}
}

func TestPage_TotalPages_Unbounded(t *testing.T) {
	p := repository.NewPage(4, repository.Unbounded())
	for _, total := range []int64{0, 1, 25, 10_000} {
		assert.Equal(t, 1, p.TotalPages(total))
	}
}

func TestPage_Skip(t *testing.T) {
	for page := 1; page <= 10; page++ {
		for limit := 1; limit <= 10; limit++ {
			p := repository.NewPage(page, repository.Bounded(limit))
			assert.Equal(t, (page-1)*limit, p.Skip())
		}
	}
	assert.Equal(t, 0, repository.NewPage(7, repository.Unbounded()).Skip())
}

func TestPage_Take(t *testing.T) {
	n, ok := repository.NewPage(1, repository.Bounded(10)).Take()
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = repository.NewPage(1, repository.Unbounded()).Take()
	assert.False(t, ok)
}

func TestLimitFromQuery(t *testing.T) {
	assert.False(t, repository.LimitFromQuery(0).IsBounded())
	l := repository.LimitFromQuery(20)
	assert.True(t, l.IsBounded())
	assert.Equal(t, 20, l.Size())
}

func TestNewPageResult_Scenarios(t *testing.T) {
	first := repository.NewPage(1, repository.Bounded(10))
	res := repository.NewPageResult(first, make([]int, 10), 25)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 0, first.Skip())
	assert.LessOrEqual(t, len(res.Items), 10)
	assert.Equal(t, 1, res.CurrentPage)

	last := repository.NewPage(3, repository.Bounded(10))
	assert.Equal(t, 20, last.Skip())
	res = repository.NewPageResult(last, make([]int, 5), 25)
	assert.Equal(t, 3, res.CurrentPage)
	assert.Len(t, res.Items, 5)

	all := repository.NewPage(3, repository.Unbounded())
	res = repository.NewPageResult[int](all, nil, 0)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 1, res.CurrentPage)
}

func TestMapPageResult(t *testing.T) {
	in := repository.NewPageResult(repository.NewPage(2, repository.Bounded(2)), []int{1, 2}, 5)
	out := repository.MapPageResult(in, func(v int) string { return string(rune('a' + v)) })
	assert.Equal(t, []string{"b", "c"}, out.Items)
	assert.Equal(t, in.Total, out.Total)
	assert.Equal(t, in.TotalPages, out.TotalPages)
	assert.Equal(t, in.CurrentPage, out.CurrentPage)
}
