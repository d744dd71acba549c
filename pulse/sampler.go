package pulse

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	lru "github.com/hashicorp/golang-lru/v2"
)

// samplerCache keeps a small number of samplers alive, keyed by
// their descriptor.
type samplerCache struct {
	device *wgpu.Device
	cache  *lru.Cache[wgpu.SamplerDescriptor, *wgpu.Sampler]
}

func newSamplerCache(ctx *Context) *samplerCache {
	cache, _ := lru.NewWithEvict[wgpu.SamplerDescriptor, *wgpu.Sampler](16, releaseSamplerOnEviction)
	return &samplerCache{device: ctx.Device, cache: cache}
}

// Get returns a sampler matching your description. The sampler is owned
// by the cache, you must not call Release on it.
func (c *samplerCache) Get(desc wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	if sampler, ok := c.cache.Get(desc); ok {
		return sampler, nil
	}

	sampler, err := c.device.CreateSampler(&desc)
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	c.cache.Add(desc, sampler)

	return sampler, nil
}

func (c *samplerCache) Purge() {
	c.cache.Purge()
}

func releaseSamplerOnEviction(_ wgpu.SamplerDescriptor, sampler *wgpu.Sampler) {
	sampler.Release()
}
