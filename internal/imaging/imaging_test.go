package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{400, 300, 128, 128, 128, 96},
		{300, 400, 128, 128, 96, 128},
		{64, 32, 128, 128, 64, 32},
		{400, 300, 100, 100, 100, 75},
		{1000, 1, 10, 10, 10, 1},
		{1, 1000, 10, 10, 1, 10},
	}
	for _, tc := range tests {
		w, h := ThumbnailSize(tc.w, tc.h, tc.maxW, tc.maxH)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("ThumbnailSize(%d, %d, %d, %d) = %d, %d, want %d, %d",
				tc.w, tc.h, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestResize(t *testing.T) {
	red := color.RGBA{R: 200, A: 255}
	big := image.NewRGBA(image.Rect(10, 10, 410, 310))
	for y := big.Rect.Min.Y; y < big.Rect.Max.Y; y++ {
		for x := big.Rect.Min.X; x < big.Rect.Max.X; x++ {
			big.Set(x, y, red)
		}
	}
	got := Resize(big, 234, 123)
	if got.Bounds() != image.Rect(0, 0, 234, 123) {
		t.Errorf("bounds = %v", got.Bounds())
	}
	if r, _, _, _ := got.At(100, 60).RGBA(); r>>8 < 198 || r>>8 > 202 {
		t.Errorf("red channel = %d, want about 200", r>>8)
	}

	thumb := Thumbnail(big, DefaultThumbnail, DefaultThumbnail)
	if thumb.Bounds().Size() != image.Pt(128, 96) {
		t.Errorf("thumbnail size = %v", thumb.Bounds().Size())
	}
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for _, format := range []string{"png", "jpeg", "gif", "bmp", "webp"} {
		var buf bytes.Buffer
		if err := Encode(&buf, img, format); err != nil {
			t.Fatalf("Encode(%s): %v", format, err)
		}
		_, got, err := image.DecodeConfig(&buf)
		if err != nil {
			t.Fatalf("decoding %s output: %v", format, err)
		}
		if want := ContentType(format); "image/"+got != want {
			t.Errorf("Encode(%s) wrote %s, ContentType says %s", format, got, want)
		}
	}
}
