package handler

import (
	"net/http"
	"strconv"

	"github.com/skip2/go-qrcode"
)

const (
	maxQRData = 512
	qrSize    = 256
)

// handleQR renders data as a PNG QR code, used for guest links.
func (s *Site) handleQR(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get("data")
	if data == "" || len(data) > maxQRData {
		http.Error(w, "data must be between 1 and "+strconv.Itoa(maxQRData)+" bytes", http.StatusBadRequest)
		return
	}

	png, err := qrcode.Encode(data, qrcode.Medium, qrSize)
	if err != nil {
		s.log.Error().Err(err).Msg("qr encode failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}
