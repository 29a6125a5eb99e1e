package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/artEvg/QuickChat/pkg"
)

// UploadService, base64 data URI olarak gelen medya payload'larını diske
// yazar ve URL referansı döner. Mesajlara ve profil fotoğraflarına base64
// blob yerine URL kaydedilir — DB şişmez, dosyalar statik servis edilir.
type UploadService interface {
	// SaveDataURI, "data:image/png;base64,..." formatındaki veriyi kaydeder.
	// allowedPrefix "image/" veya "audio/" olur — MIME bu prefix ile
	// başlamıyorsa ErrBadRequest döner. Dönen değer "/api/uploads/..." URL'idir.
	SaveDataURI(dataURI string, allowedPrefix string) (string, error)
}

type uploadService struct {
	uploadDir string
	maxSize   int64
}

// NewUploadService, constructor.
// uploadDir yoksa oluşturulur — ilk upload'da sürprizle karşılaşmamak için
// burada garanti edilir.
func NewUploadService(uploadDir string, maxSize int64) (UploadService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &uploadService{uploadDir: uploadDir, maxSize: maxSize}, nil
}

// mimeExtensions, bilinen MIME type'ların dosya uzantıları.
// Bilinmeyen type'larda ".bin" kullanılır.
var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
	"audio/wav":  ".wav",
	"audio/webm": ".webm",
	"audio/mp4":  ".m4a",
}

func (s *uploadService) SaveDataURI(dataURI string, allowedPrefix string) (string, error) {
	// Format: data:<mime>;base64,<payload>
	if !strings.HasPrefix(dataURI, "data:") {
		return "", fmt.Errorf("%w: expected a data URI", pkg.ErrBadRequest)
	}

	rest := dataURI[len("data:"):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", fmt.Errorf("%w: expected base64-encoded data URI", pkg.ErrBadRequest)
	}

	mimeType := strings.TrimSpace(rest[:sep])
	if !strings.HasPrefix(mimeType, allowedPrefix) {
		return "", fmt.Errorf("%w: unexpected media type %s", pkg.ErrBadRequest, mimeType)
	}

	encoded := rest[sep+len(";base64,"):]

	// Base64 boyutu decode edilmiş boyutun ~4/3'üdür — decode etmeden
	// önce kabaca kontrol edip bariz büyük payload'ları erken reddediyoruz.
	if int64(len(encoded))/4*3 > s.maxSize {
		return "", fmt.Errorf("%w: file too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64 data", pkg.ErrBadRequest)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w: file too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	ext, ok := mimeExtensions[mimeType]
	if !ok {
		ext = ".bin"
	}

	// Unique dosya adı — çakışma ve tahmin edilebilirliğe karşı random hex
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random filename: %w", err)
	}
	diskFilename := hex.EncodeToString(randomBytes) + ext

	destPath := filepath.Join(s.uploadDir, diskFilename)
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return "/api/uploads/" + diskFilename, nil
}
