package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WgpuBacking mirrors a ring slot into a uniform buffer.
type WgpuBacking struct {
	queue *wgpu.Queue
	buf   *wgpu.Buffer
}

// NewWgpuAllocator returns a BackingAllocator creating one uniform buffer per
// slot. Buffer sizes are rounded up to the WGSL struct alignment.
func NewWgpuAllocator(device *wgpu.Device, label string) BackingAllocator {
	return func(index int, size int) (Backing, error) {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            fmt.Sprintf("%s[%d]", label, index),
			Size:             uint64(AlignedSize(size)),
			Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return nil, err
		}
		return &WgpuBacking{queue: device.GetQueue(), buf: buf}, nil
	}
}

func (b *WgpuBacking) Write(offset uint64, data []byte) error {
	if b.buf == nil {
		return ErrPoolClosed
	}
	b.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

func (b *WgpuBacking) Buffer() *wgpu.Buffer {
	return b.buf
}

func (b *WgpuBacking) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}
