package main

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	xdraw "golang.org/x/image/draw"

	"github.com/artryazanov/reshade-wide-capture-addon/addon/camera"
	"github.com/artryazanov/reshade-wide-capture-addon/addon/cubemap"
)

var (
	flagDir      string
	flagOut      string
	flagFaceSize int
	flagWorkers  int
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "cubemap-assemble",
	Short: "Assemble six cube face images into a horizontal-cross cubemap",
	Long: `Reads right.png, left.png, up.png, down.png, front.png and back.png
from a directory and composes them into a single 4x3 horizontal-cross
cubemap image.`,
	RunE: runAssemble,
}

func init() {
	rootCmd.Flags().StringVarP(&flagDir, "dir", "d", ".", "directory containing the six face PNGs")
	rootCmd.Flags().StringVarP(&flagOut, "out", "o", "cubemap_cross.png", "output cross image path")
	rootCmd.Flags().IntVar(&flagFaceSize, "face-size", 0, "edge length to rescale faces to (0 = native front-face size)")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "worker pool size for assembly (0 = auto)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	options := []cubemap.ManagerOption{
		cubemap.WithFaceSize(flagFaceSize),
		cubemap.WithWorkers(flagWorkers),
	}
	if flagVerbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		options = append(options, cubemap.WithLogger(logger))
	}
	manager := cubemap.NewManager(options...)

	for _, face := range camera.AllFaces() {
		path := filepath.Join(flagDir, face.String()+".png")
		img, err := loadRGBA(path)
		if err != nil {
			return fmt.Errorf("failed to load %s face: %w", face, err)
		}
		if err := manager.SubmitFace(face, img); err != nil {
			return err
		}
	}

	out, err := os.Create(flagOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", flagOut, err)
	}
	defer out.Close()

	if err := manager.WriteCross(out); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", flagOut)
	return nil
}

func loadRGBA(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, bounds, xdraw.Src, nil)
	return rgba, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
