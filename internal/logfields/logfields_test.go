package logfields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, KeyError, Error(nil).Key)
}

func TestDurationAttrIsMilliseconds(t *testing.T) {
	a := Duration(1500 * time.Millisecond)
	assert.Equal(t, KeyDurationMS, a.Key)
	assert.InDelta(t, 1500.0, a.Value.Float64(), 0.001)
}
