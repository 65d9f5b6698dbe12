package host

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// surfaceWindow wraps the GLFW window that anchors the WebGPU surface. The
// capture host never draws into it; a hidden window is enough to request a
// surface-compatible adapter, which keeps device selection identical to what
// a real presenting application would get.
type surfaceWindow struct {
	window *glfw.Window
}

// newSurfaceWindow creates the GLFW window backing the host surface.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newSurfaceWindow(width, height int, title string, visible bool) (*surfaceWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if !visible {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %v", err)
	}

	return &surfaceWindow{window: win}, nil
}

// surfaceDescriptor builds a platform-appropriate wgpu.SurfaceDescriptor via
// the wgpuglfw bridge, which has per-platform implementations (Windows, X11,
// Wayland, macOS).
func (w *surfaceWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.window)
}

// poll pumps the GLFW event loop once. Must run on the thread that created
// the window.
func (w *surfaceWindow) poll() {
	glfw.PollEvents()
}

// shouldClose reports whether the window received a close request.
func (w *surfaceWindow) shouldClose() bool {
	return w.window.ShouldClose()
}

// close destroys the window and shuts GLFW down.
func (w *surfaceWindow) close() {
	w.window.Destroy()
	glfw.Terminate()
}
