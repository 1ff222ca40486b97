package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	var errs Errors
	errs = Append(errs, nil)
	assert.Nil(t, errs)

	a, b, c := New("a.npz: no group"), New("b.npz: truncated"), New("c.npz: bad dtype")
	errs = Append(errs, a)
	errs = Append(errs, Append(Append(nil, b), c))
	require.Equal(t, 3, errs.Len())
	assert.Equal(t, []error{a, b, c}, errs.Slice())
}

func TestSummary(t *testing.T) {
	errs := Append(Append(Append(nil, New("a")), New("b")), New("c"))
	assert.Equal(t, "a\nb\nc", errs.Error())
	assert.Equal(t, "a\n... and 2 more", errs.Summary(1))
}

func TestCombine(t *testing.T) {
	a, b, c := New("a"), New("b"), New("c")
	assert.Nil(t, Combine(nil, nil))
	assert.Equal(t, a, Combine(a, nil))
	assert.Equal(t, b, Combine(nil, b))

	ab := Combine(a, b)
	abc := Combine(ab, c)
	require.Implements(t, (*Errors)(nil), abc)
	assert.Equal(t, []error{a, b, c}, abc.(Errors).Slice())
	// the first list is left untouched
	assert.Equal(t, 2, ab.(Errors).Len())
}
