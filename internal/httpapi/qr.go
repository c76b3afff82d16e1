package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// HandleQR renders a PNG QR code linking to the session's results.
func (a *API) HandleQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := a.session(w, ps)
	if !ok {
		return
	}

	png, err := qrcode.Encode(a.resultsURL(r, session.ID()), qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (a *API) resultsURL(r *http.Request, sessionID string) string {
	return a.baseURL(r) + "/sessions/" + sessionID + "/results"
}
