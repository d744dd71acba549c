package pulse

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var forceFallbackAdapter = os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1"

func init() {
	// glfw and wgpu surfaces must be driven from the main thread
	runtime.LockOSThread()

	switch strings.ToUpper(os.Getenv("WGPU_LOG_LEVEL")) {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	}
}

// Context encapsulates the low level state of the webgpu context,
// this includes the Device, Queue, Surface and active Adapter.
type Context struct {
	*wgpu.Device
	*wgpu.Queue
	Surface *wgpu.Surface
	Adapter *wgpu.Adapter
}

// New creates a gpu context able to present to the surface described by sd.
func New(sd *wgpu.SurfaceDescriptor) (st *Context, err error) {
	defer func() {
		if err != nil && st != nil {
			st.Release()
			st = nil
		}
	}()

	st = &Context{}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	st.Surface = instance.CreateSurface(sd)

	// the adapter must be able to render to the surface
	st.Adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    st.Surface,
	})
	if err != nil {
		return st, fmt.Errorf("request adapter: %w", err)
	}

	st.Device, err = st.Adapter.RequestDevice(nil)
	if err != nil {
		return st, fmt.Errorf("request device: %w", err)
	}

	st.Queue = st.Device.GetQueue()

	slog.Info("GPU context created", slog.Bool("fallbackAdapter", forceFallbackAdapter))

	return st, nil
}

// Release frees all gpu resources in reverse order of creation.
// It is safe to call Release multiple times.
func (d *Context) Release() {
	if d.Queue != nil {
		d.Queue.Release()
		d.Queue = nil
	}

	if d.Device != nil {
		d.Device.Release()
		d.Device = nil
	}

	if d.Adapter != nil {
		d.Adapter.Release()
		d.Adapter = nil
	}

	if d.Surface != nil {
		d.Surface.Release()
		d.Surface = nil
	}
}
