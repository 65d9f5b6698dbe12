package cubemap

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	xdraw "golang.org/x/image/draw"

	"github.com/artryazanov/reshade-wide-capture-addon/addon/camera"
	"github.com/artryazanov/reshade-wide-capture-addon/addon/interceptor"
	"github.com/artryazanov/reshade-wide-capture-addon/addon/profiler"
	"github.com/artryazanov/reshade-wide-capture-addon/common"
)

// crossCells maps each face to its cell in the 4x3 horizontal-cross layout:
// Up above Front; Left, Front, Right, Back across the middle; Down below.
var crossCells = map[camera.CubeFace]image.Point{
	camera.FaceUp:    {X: 1, Y: 0},
	camera.FaceLeft:  {X: 0, Y: 1},
	camera.FaceFront: {X: 1, Y: 1},
	camera.FaceRight: {X: 2, Y: 1},
	camera.FaceBack:  {X: 3, Y: 1},
	camera.FaceDown:  {X: 1, Y: 2},
}

// Manager is the addon facade: it owns one buffer interceptor and one camera
// controller, receives the capture layer's buffer lifecycle events, hands out
// per-face rewritten camera buffers, and assembles submitted face captures
// into a cubemap cross.
//
// All methods are safe for concurrent use.
type Manager interface {
	// OnMapBuffer forwards a buffer map event to the interceptor.
	//
	// Parameters:
	//   - handle: the GPU resource handle being mapped
	//   - data: the CPU-visible view of the mapped buffer, valid until unmap
	OnMapBuffer(handle uint64, data []byte)

	// OnUnmapBuffer forwards a buffer unmap event to the interceptor, which
	// in turn feeds the final contents to the camera controller.
	//
	// Parameters:
	//   - handle: the GPU resource handle being unmapped
	OnUnmapBuffer(handle uint64)

	// OnUpdateBuffer forwards a direct buffer write to the camera controller.
	//
	// Parameters:
	//   - handle: the GPU resource handle being written
	//   - data: the full buffer contents, valid only for the call
	OnUpdateBuffer(handle uint64, data []byte)

	// Controller returns the owned camera detector/rewriter.
	//
	// Returns:
	//   - camera.Controller: the controller instance
	Controller() camera.Controller

	// Interceptor returns the owned buffer interceptor.
	//
	// Returns:
	//   - interceptor.Interceptor: the interceptor instance
	Interceptor() interceptor.Interceptor

	// BufferForFace returns the rewritten camera buffer for one cube face,
	// ready to be uploaded before rendering that face.
	//
	// Parameters:
	//   - face: the cube face to render next
	//
	// Returns:
	//   - []byte: the rewritten buffer
	//   - bool: false if no camera buffer has been identified yet
	BufferForFace(face camera.CubeFace) ([]byte, bool)

	// SubmitFace stores a rendered capture for one cube face. The image is
	// copied; the caller may reuse its pixel buffer.
	//
	// Parameters:
	//   - face: the face the capture belongs to
	//   - img: the captured pixels
	//
	// Returns:
	//   - error: error if the face is invalid or the image empty
	SubmitFace(face camera.CubeFace, img *image.RGBA) error

	// FacesComplete reports whether all six faces have been submitted since
	// the last Reset.
	//
	// Returns:
	//   - bool: true if every face has a capture
	FacesComplete() bool

	// Assemble composes the six submitted faces into a horizontal-cross
	// cubemap image, rescaling each face to a uniform edge size in parallel.
	//
	// Returns:
	//   - *image.RGBA: the assembled 4x3 cross
	//   - error: error if any face is missing
	Assemble() (*image.RGBA, error)

	// WriteCross assembles the cross and PNG-encodes it to w.
	//
	// Parameters:
	//   - w: destination writer
	//
	// Returns:
	//   - error: error if assembly or encoding fails
	WriteCross(w io.Writer) error

	// SaveFaces writes each submitted face as <face>.png under dir, encoding
	// the files in parallel. Missing faces are skipped.
	//
	// Parameters:
	//   - dir: destination directory, created if needed
	//
	// Returns:
	//   - error: the joined errors of any failed writes
	SaveFaces(dir string) error

	// Reset discards all submitted face captures, ready for the next capture
	// pass. Detection state is untouched.
	Reset()
}

type managerImpl struct {
	mu *sync.Mutex

	controller camera.Controller
	icept      interceptor.Interceptor

	faces    map[camera.CubeFace]*image.RGBA
	faceSize int

	workers int
	pool    worker.DynamicWorkerPool

	prof   *profiler.Profiler
	logger *slog.Logger
}

// Ensure managerImpl implements Manager.
var _ Manager = &managerImpl{}

// NewManager creates the addon facade. Unless overridden via options it owns
// a fresh camera controller and an interceptor wired to it.
//
// Parameters:
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the newly created manager
func NewManager(options ...ManagerOption) Manager {
	m := &managerImpl{
		mu:      &sync.Mutex{},
		faces:   make(map[camera.CubeFace]*image.RGBA),
		workers: max(runtime.NumCPU()-1, 1),
		logger:  common.NopLogger(),
	}
	for _, option := range options {
		option(m)
	}
	if m.controller == nil {
		m.controller = camera.NewController()
	}
	if m.icept == nil {
		m.icept = interceptor.NewInterceptor(interceptor.WithScanner(m.controller))
	}
	// Queue size of 16 covers the six faces with headroom for overlapping
	// assemble and save passes.
	m.pool = worker.NewDynamicWorkerPool(m.workers, 16, 1*time.Second)
	return m
}

func (m *managerImpl) OnMapBuffer(handle uint64, data []byte) {
	m.icept.OnMapBuffer(handle, data)
}

func (m *managerImpl) OnUnmapBuffer(handle uint64) {
	m.icept.OnUnmapBuffer(handle)
	m.tickProfiler()
}

func (m *managerImpl) OnUpdateBuffer(handle uint64, data []byte) {
	m.controller.OnUpdateBuffer(handle, data)
	m.tickProfiler()
}

func (m *managerImpl) tickProfiler() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prof != nil {
		m.prof.Tick(m.controller.CameraBuffer() != 0)
	}
}

func (m *managerImpl) Controller() camera.Controller {
	return m.controller
}

func (m *managerImpl) Interceptor() interceptor.Interceptor {
	return m.icept
}

func (m *managerImpl) BufferForFace(face camera.CubeFace) ([]byte, bool) {
	return m.controller.GetModifiedBufferData(face)
}

func (m *managerImpl) SubmitFace(face camera.CubeFace, img *image.RGBA) error {
	if _, ok := crossCells[face]; !ok {
		return fmt.Errorf("cubemap: invalid face %d", int(face))
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("cubemap: empty capture for face %s", face)
	}

	bounds := img.Bounds()
	snapshot := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(snapshot, image.Point{}, img, bounds, xdraw.Src, nil)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces[face] = snapshot
	m.logger.Debug("face capture stored", "face", face.String(), "width", bounds.Dx(), "height", bounds.Dy())
	return nil
}

func (m *managerImpl) FacesComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.faces) == len(crossCells)
}

func (m *managerImpl) Assemble() (*image.RGBA, error) {
	m.mu.Lock()
	faces := make(map[camera.CubeFace]*image.RGBA, len(m.faces))
	for face, img := range m.faces {
		faces[face] = img
	}
	edge := m.faceSize
	m.mu.Unlock()

	for _, face := range camera.AllFaces() {
		if _, ok := faces[face]; !ok {
			return nil, fmt.Errorf("cubemap: face %s has no capture", face)
		}
	}
	if edge <= 0 {
		edge = faces[camera.FaceFront].Bounds().Dx()
	}

	out := image.NewRGBA(image.Rect(0, 0, 4*edge, 3*edge))

	// Each face scales into a disjoint cell, so the tasks never touch the
	// same pixels.
	var wg sync.WaitGroup
	taskID := 0
	for face, cell := range crossCells {
		src := faces[face]
		dst := image.Rect(cell.X*edge, cell.Y*edge, (cell.X+1)*edge, (cell.Y+1)*edge)

		wg.Add(1)
		srcCap, dstCap := src, dst // capture for closure
		id := taskID
		taskID++
		m.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				xdraw.ApproxBiLinear.Scale(out, dstCap, srcCap, srcCap.Bounds(), xdraw.Src, nil)
				return nil, nil
			},
		})
	}
	wg.Wait()

	return out, nil
}

func (m *managerImpl) WriteCross(w io.Writer) error {
	img, err := m.Assemble()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("cubemap: encode cross: %w", err)
	}
	return nil
}

func (m *managerImpl) SaveFaces(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cubemap: create output dir: %w", err)
	}

	m.mu.Lock()
	faces := make(map[camera.CubeFace]*image.RGBA, len(m.faces))
	for face, img := range m.faces {
		faces[face] = img
	}
	m.mu.Unlock()

	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		allErr []error
	)
	taskID := 0
	for face, img := range faces {
		path := filepath.Join(dir, face.String()+".png")

		wg.Add(1)
		imgCap, pathCap := img, path
		id := taskID
		taskID++
		m.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				if err := savePNG(pathCap, imgCap); err != nil {
					errMu.Lock()
					allErr = append(allErr, err)
					errMu.Unlock()
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return errors.Join(allErr...)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cubemap: create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cubemap: encode %s: %w", path, err)
	}
	return nil
}

func (m *managerImpl) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = make(map[camera.CubeFace]*image.RGBA)
}
