package mimic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCore(t *testing.T) {
	core := NewErrorCore("FakeNotFound")

	assert.Equal(t, "FakeNotFound", core.Error())
	assert.Nil(t, core.Unwrap())

	var err error = core
	assert.EqualError(t, err, "FakeNotFound")
}

func TestTraversalCoreSatisfiesMarker(t *testing.T) {
	type bag struct {
		TraversalCore
	}

	var traversable Traversable = bag{}
	assert.NotNil(t, traversable)
}

func TestDoubleErrorFormatting(t *testing.T) {
	err := NewDoubleError(ReasonUnknownType, "shop.Ghost", "no generated double")
	assert.Contains(t, err.Error(), "unknown type")
	assert.Contains(t, err.Error(), "shop.Ghost")

	assert.True(t, IsReason(err, ReasonUnknownType))
	assert.False(t, IsReason(err, ReasonNameInUse))
	assert.False(t, IsReason(nil, ReasonUnknownType))
}
