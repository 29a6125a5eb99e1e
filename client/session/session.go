// Package session, client'ın lokal oturum dosyasını yönetir.
//
// Token düz metin olarak diske yazılmaz — makine kimliğinden (machine-id)
// türetilen AES-GCM anahtarı ile şifrelenir. Bu "at rest" koruma sağlar:
// dosya başka makineye kopyalanırsa çözülemez. Aynı makinede root olan
// herkes zaten anahtarı türetebilir; amaç yanlışlıkla sızan yedek/dosya
// paylaşımlarına karşı korumadır.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Session, diske yazılan oturum bilgisi.
// CorrespondedWith: daha önce yazışılmış peer ID'leri — roster üyeliği
// uygulama yeniden açıldığında da korunur.
type Session struct {
	ServerURL        string   `json:"server_url"`
	Token            string   `json:"token"`
	UserID           string   `json:"user_id"`
	FullName         string   `json:"full_name"`
	CorrespondedWith []string `json:"corresponded_with"`
}

// GetConfigDir, profil için config dizinini döner (~/.config/quickchat/<profile>).
func GetConfigDir(profileName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quickchat", profileName)
}

// getEncryptionKey, makine kimliğinden 32 byte'lık AES anahtarı türetir.
// machine-id yoksa hostname'e düşülür.
func getEncryptionKey() []byte {
	paths := []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}
	var id string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err == nil {
			id = strings.TrimSpace(string(data))
			break
		}
	}

	if id == "" {
		hostname, _ := os.Hostname()
		id = hostname
	}

	hash := sha256.Sum256([]byte(id))
	return hash[:]
}

func encrypt(data []byte) (string, error) {
	block, err := aes.NewCipher(getEncryptionKey())
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, data, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decrypt(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(getEncryptionKey())
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Load, kaydedilmiş session'ı okur. Dosya yoksa veya çözülemezse nil döner —
// çağıran taraf login ekranına düşer.
func Load(profileName string) *Session {
	configDir := GetConfigDir(profileName)
	if configDir == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(configDir, "session.json"))
	if err != nil {
		return nil
	}

	decrypted, err := decrypt(string(data))
	if err != nil {
		return nil
	}

	var sess Session
	if err := json.Unmarshal(decrypted, &sess); err != nil {
		return nil
	}
	return &sess
}

// Save, session'ı şifreleyip diske yazar (dosya 0600, dizin 0700).
func Save(profileName string, sess Session) error {
	configDir := GetConfigDir(profileName)
	if configDir == "" {
		return fmt.Errorf("could not get config directory")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "session.json"), []byte(encrypted), 0600)
}

// Clear, kaydedilmiş session'ı siler (logout).
func Clear(profileName string) {
	configDir := GetConfigDir(profileName)
	if configDir != "" {
		os.Remove(filepath.Join(configDir, "session.json"))
	}
}
