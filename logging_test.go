package hellocube

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(prefix string, debug bool) (*DefaultLogger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	l := NewDefaultLogger(prefix, debug)
	l.out = log.New(&out, "", 0)
	l.err = log.New(&errOut, "", 0)
	return l, &out, &errOut
}

func TestDefaultLogger_Levels(t *testing.T) {
	l, out, errOut := newBufferedLogger("cube", false)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String(), "debug output should be suppressed when debug is off")

	l.Infof("frame %d", 7)
	assert.Equal(t, "[cube] INFO: frame 7\n", out.String())

	l.Warnf("slow")
	l.Errorf("broken")
	assert.Equal(t, "[cube] WARN: slow\n[cube] ERROR: broken\n", errOut.String())

	out.Reset()
	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible")
	assert.Equal(t, "[cube] DEBUG: visible\n", out.String())
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	l, out, _ := newBufferedLogger("", false)
	l.Infof("hello")
	assert.Equal(t, "INFO: hello\n", out.String())
}

func TestOrNop(t *testing.T) {
	nop := OrNop(nil)
	assert.NotNil(t, nop)
	assert.False(t, nop.DebugEnabled())
	nop.SetDebug(true)
	assert.False(t, nop.DebugEnabled())

	l := NewDefaultLogger("x", false)
	assert.Same(t, l, OrNop(l))
}

func TestDefaultLogger_With(t *testing.T) {
	l, out, errOut := newBufferedLogger("app", false)

	cube := l.With("Cube")
	cube.Infof("ready")
	assert.Equal(t, "[app] INFO: Cube: ready\n", out.String())

	ring := cube.With("uniforms")
	ring.Warnf("slot %d released while free", 2)
	assert.Equal(t, "[app] WARN: Cube/uniforms: slot 2 released while free\n", errOut.String())

	out.Reset()
	ring.Debugf("hidden")
	assert.Empty(t, out.String())

	ring.SetDebug(true)
	assert.True(t, l.DebugEnabled(), "children share the parent's debug switch")
	ring.Debugf("visible")
	assert.Equal(t, "[app] DEBUG: Cube/uniforms: visible\n", out.String())
}

func TestNopLogger_With(t *testing.T) {
	nop := NewNopLogger()
	assert.Same(t, nop, nop.With("anything"))
}
