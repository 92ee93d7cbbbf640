// Package ebitensink implements sink.VideoSurface/AudioDevice/Timer/
// EventPump on top of github.com/hajimehoshi/ebiten/v2. Rather than let
// libswscale convert to RGBA before upload, the decoder hands over three
// planar luma/chroma buffers with their own strides, so the RGB conversion
// happens here, on the GPU, via a Kage shader.
package ebitensink

import (
	_ "embed"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zhaomo08/avplay/sink"
)

//go:embed yuv420p.kage
var yuv420pShaderSrc []byte

// VideoSurface uploads planar YUV420P frames into three single-channel
// ebiten.Image textures and composites them with a Kage shader on Draw.
type VideoSurface struct {
	shader    *ebiten.Shader
	y, cb, cr *ebiten.Image
	width     int
	height    int
	sarNum    int
	sarDen    int
}

// NewVideoSurface compiles the YUV->RGB conversion shader. Call Upload once
// per decoded frame and Draw once per Draw() tick.
func NewVideoSurface() (*VideoSurface, error) {
	shader, err := ebiten.NewShader(yuv420pShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("ebitensink: compile yuv420p shader: %w", err)
	}
	return &VideoSurface{shader: shader}, nil
}

var _ sink.VideoSurface = (*VideoSurface)(nil)

// Upload replaces the currently displayed frame. linesize[0] is the luma
// stride in bytes; linesize[1]/linesize[2] are the (typically halved)
// chroma strides for 4:2:0 subsampling. sarNum/sarDen is the frame's sample
// aspect ratio, kept for Draw's letterboxing; a non-positive ratio is
// treated as square pixels (1:1).
func (s *VideoSurface) Upload(width, height int, planes [3][]byte, linesize [3]int, sarNum, sarDen int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("ebitensink: invalid frame size %dx%d", width, height)
	}
	chromaW, chromaH := (width+1)/2, (height+1)/2

	if s.width != width || s.height != height {
		s.y = ebiten.NewImage(width, height)
		s.cb = ebiten.NewImage(chromaW, chromaH)
		s.cr = ebiten.NewImage(chromaW, chromaH)
		s.width, s.height = width, height
	}
	s.sarNum, s.sarDen = sarNum, sarDen

	writePlane(s.y, width, height, planes[0], linesize[0])
	writePlane(s.cb, chromaW, chromaH, planes[1], linesize[1])
	writePlane(s.cr, chromaW, chromaH, planes[2], linesize[2])
	return nil
}

// writePlane packs a single-channel 8-bit plane into an RGBA buffer (ebiten
// only accepts RGBA pixel uploads), replicated across the R, G and B
// channels with alpha set to 255, so the shader can sample whichever color
// channel is convenient.
func writePlane(img *ebiten.Image, width, height int, plane []byte, linesize int) {
	if plane == nil || linesize <= 0 {
		return
	}
	rgba := make([]byte, width*height*4)
	for row := 0; row < height; row++ {
		srcRow := plane[row*linesize:]
		dstRow := rgba[row*width*4:]
		for col := 0; col < width && col < len(srcRow); col++ {
			v := srcRow[col]
			o := col * 4
			dstRow[o+0] = v
			dstRow[o+1] = v
			dstRow[o+2] = v
			dstRow[o+3] = 255
		}
	}
	img.WritePixels(rgba)
}

// Draw composites the three uploaded planes into dst using the YUV->RGB
// Kage shader, letterboxed inside dst's bounds so the sample aspect ratio
// is preserved instead of stretching the picture to fill the window.
func (s *VideoSurface) Draw(dst *ebiten.Image) {
	if s.y == nil {
		return
	}
	bounds := dst.Bounds()
	rect := calculateDisplayRect(bounds.Dx(), bounds.Dy(), s.width, s.height, s.sarNum, s.sarDen)

	var opts ebiten.DrawRectShaderOptions
	opts.Images[0] = s.y
	opts.Images[1] = s.cb
	opts.Images[2] = s.cr
	opts.GeoM.Scale(float64(rect.w)/float64(s.width), float64(rect.h)/float64(s.height))
	opts.GeoM.Translate(float64(rect.x), float64(rect.y))
	dst.DrawRectShader(s.width, s.height, s.shader, &opts)
}

type displayRect struct {
	x, y, w, h int
}

// calculateDisplayRect fits a picWidth x picHeight frame with the given
// sample aspect ratio into a screenWidth x screenHeight destination,
// preserving its display aspect ratio and centering the result (mirrors
// ffplay's calculate_display_rect: sar corrects for non-square pixels
// before the picture is fit into the window).
func calculateDisplayRect(screenWidth, screenHeight, picWidth, picHeight, sarNum, sarDen int) displayRect {
	if sarNum <= 0 || sarDen <= 0 {
		sarNum, sarDen = 1, 1
	}
	aspectRatio := (float64(sarNum) / float64(sarDen)) * float64(picWidth) / float64(picHeight)

	height := screenHeight
	width := int(float64(height)*aspectRatio + 0.5)
	if width > screenWidth {
		width = screenWidth
		height = int(float64(width)/aspectRatio + 0.5)
	}

	return displayRect{
		x: (screenWidth - width) / 2,
		y: (screenHeight - height) / 2,
		w: width,
		h: height,
	}
}

func (s *VideoSurface) Close() error {
	if s.y != nil {
		s.y.Deallocate()
		s.cb.Deallocate()
		s.cr.Deallocate()
	}
	return nil
}
