package imagestudio

import (
	"errors"
	"testing"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantErr error
	}{
		{
			name:    "valid prompt",
			prompt:  "A sunset over mountains",
			wantErr: nil,
		},
		{
			name:    "empty prompt",
			prompt:  "",
			wantErr: ErrEmptyPrompt,
		},
		{
			name:    "whitespace prompt",
			prompt:  " \t\n",
			wantErr: ErrEmptyPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrompt(tt.prompt)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePrompt() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateInstruction(t *testing.T) {
	if err := ValidateInstruction("add a red scarf"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateInstruction("  "); !errors.Is(err, ErrMissingInstruction) {
		t.Errorf("expected ErrMissingInstruction, got %v", err)
	}
}

func TestValidateImageCount(t *testing.T) {
	for _, n := range []int{1, 4, MaxImagesPerRequest} {
		if err := ValidateImageCount(n); err != nil {
			t.Errorf("ValidateImageCount(%d) = %v", n, err)
		}
	}
	for _, n := range []int{0, -3, MaxImagesPerRequest + 1} {
		if err := ValidateImageCount(n); !errors.Is(err, ErrInvalidImageCount) {
			t.Errorf("ValidateImageCount(%d) = %v, want ErrInvalidImageCount", n, err)
		}
	}
}

func TestValidateInputImage(t *testing.T) {
	tests := []struct {
		name    string
		img     InputImage
		wantErr error
	}{
		{
			name: "valid image",
			img: InputImage{
				Data:     []byte("fake image data"),
				MIMEType: "image/png",
			},
			wantErr: nil,
		},
		{
			name:    "empty image",
			img:     InputImage{},
			wantErr: ErrEmptyImageData,
		},
		{
			name: "missing MIME type",
			img: InputImage{
				Data: []byte("fake image data"),
			},
			wantErr: ErrInvalidMIMEType,
		},
		{
			name: "unsupported MIME type",
			img: InputImage{
				Data:     []byte("fake image data"),
				MIMEType: "image/bmp",
			},
			wantErr: ErrInvalidMIMEType,
		},
		{
			name: "too large",
			img: InputImage{
				Data:     make([]byte, MaxImageSize+1),
				MIMEType: "image/jpeg",
			},
			wantErr: ErrImageTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputImage(tt.img)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateInputImage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
