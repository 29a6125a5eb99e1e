package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
)

// API response kontratı:
// Başarılı yanıtlar top-level alanlar taşır — { "success": true, "userData": ..., "token": ... }.
// Hata yanıtları her zaman { "success": false, "message": "..." } şeklindedir.
//
// Handler'lar kendi response struct'larını tanımlar ve Success alanını
// JSON(w, status, v) öncesi true'ya set etmek yerine struct literal'de verir.
// Burada generic bir data wrapper KULLANMIYORUZ — client'lar (web + TUI)
// alanları top-level bekler.

// ErrorResponse, tüm hata yanıtlarının formatı.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON, verilen değeri olduğu gibi serialize edip yazar.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Error, domain error'ı uygun HTTP status code ile yazar.
// errors.Is() error chain'ini kontrol eder — wrap edilmiş error'lar da doğru match eder.
func Error(w http.ResponseWriter, err error) {
	JSON(w, mapErrorToStatus(err), ErrorResponse{Success: false, Message: err.Error()})
}

// ErrorWithMessage, özel mesajlı hata yanıtı gönderir.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Success: false, Message: message})
}

// mapErrorToStatus, domain error'ları HTTP status code'larına eşler.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
