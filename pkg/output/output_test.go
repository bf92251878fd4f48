package output

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"golang.org/x/image/bmp"
)

func testImage() *image.RGBA {
	sink := NewImageSink(2, 2)
	sink.WritePixel(0, 0, 255, 0, 0)
	sink.WritePixel(1, 1, 0, 0, 255)
	return sink.Image()
}

func TestImageSink(t *testing.T) {
	img := testImage()

	tests := []struct {
		x, y     int
		expected color.RGBA
	}{
		{0, 0, color.RGBA{R: 255, A: 255}},
		{1, 1, color.RGBA{B: 255, A: 255}},
		{1, 0, color.RGBA{A: 255}}, // Unwritten pixels are opaque black
	}
	for _, tt := range tests {
		if c := img.RGBAAt(tt.x, tt.y); c != tt.expected {
			t.Errorf("Pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.expected, c)
		}
	}
}

func TestImageSink_OutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 0},
		{"x past width", 2, 0},
		{"y past height", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			NewImageSink(2, 2).WritePixel(tt.x, tt.y, 0, 0, 0)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path        string
		expected    string
		expectError bool
	}{
		{"render.png", FormatPNG, false},
		{"out/Render.PNG", FormatPNG, false},
		{"render.bmp", FormatBMP, false},
		{"render.jpg", "", true},
		{"render", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := FormatFromPath(tt.path)
			if (err != nil) != tt.expectError {
				t.Fatalf("Expected error=%v, got %v", tt.expectError, err)
			}
			if format != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, format)
			}
		})
	}
}

func TestSaveImage_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		decode func(r io.Reader) (image.Image, error)
	}{
		{"render.png", png.Decode},
		{"render.bmp", bmp.Decode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", tt.name)
			if err := SaveImage(path, testImage()); err != nil {
				t.Fatalf("SaveImage failed: %v", err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("Failed to open saved image: %v", err)
			}
			defer f.Close()

			decoded, err := tt.decode(f)
			if err != nil {
				t.Fatalf("Failed to decode saved image: %v", err)
			}
			r, g, b, _ := decoded.At(0, 0).RGBA()
			if r>>8 != 255 || g != 0 || b != 0 {
				t.Errorf("Expected red at (0,0), got (%d,%d,%d)", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestSaveImage_UnsupportedExtension(t *testing.T) {
	if err := SaveImage(filepath.Join(t.TempDir(), "render.gif"), testImage()); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, testImage(), "tiff"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

// fakeS3 records uploads
type fakeS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, input)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher_PublishImage(t *testing.T) {
	client := &fakeS3{}
	publisher := NewS3PublisherWithClient(client, S3Config{Bucket: "renders", Prefix: "cornell", ACL: "public-read"}, nil)

	key, err := publisher.PublishImage(context.Background(), "render.png", testImage())
	if err != nil {
		t.Fatalf("PublishImage failed: %v", err)
	}
	if key != "cornell/render.png" {
		t.Errorf("Expected prefixed key, got %s", key)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("Expected one upload, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if aws.StringValue(input.Bucket) != "renders" || aws.StringValue(input.ContentType) != "image/png" {
		t.Errorf("Unexpected upload input: %v", input)
	}
	if aws.StringValue(input.ACL) != "public-read" {
		t.Errorf("Expected ACL to be set, got %q", aws.StringValue(input.ACL))
	}
	if aws.Int64Value(input.ContentLength) != int64(len(client.bodies[0])) {
		t.Errorf("Content length %d does not match body %d", aws.Int64Value(input.ContentLength), len(client.bodies[0]))
	}
	if _, err := png.Decode(bytes.NewReader(client.bodies[0])); err != nil {
		t.Errorf("Uploaded body is not a PNG: %v", err)
	}
}

func TestS3Publisher_Error(t *testing.T) {
	uploadErr := errors.New("access denied")
	publisher := NewS3PublisherWithClient(&fakeS3{err: uploadErr}, S3Config{Bucket: "renders"}, nil)

	_, err := publisher.Publish(context.Background(), "render.bmp", []byte{1, 2, 3}, ContentType(FormatBMP))
	if !errors.Is(err, uploadErr) {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
}

func TestNewS3Publisher_RequiresBucket(t *testing.T) {
	if _, err := NewS3Publisher(S3Config{Region: "us-east-1"}, nil); err == nil {
		t.Error("Expected error without a bucket")
	}
}
