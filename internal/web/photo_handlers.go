package web

import (
	"fmt"
	"net/http"
	"path"
	"strings"
)

// maxPhotoSize caps uploaded photo bodies.
const maxPhotoSize = 10 << 20

// apiUploadPhoto forwards a multipart "file" to Cloudinary. Without a
// public_id the photo is stored under visits/{user}/{unix millis}. When the
// upload fails the response carries only the path, so the visit can still
// be saved.
func (s *Server) apiUploadPhoto(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		apiError(w, "photo upload is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		apiError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		apiError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	publicID := strings.TrimSpace(r.FormValue("public_id"))
	if publicID == "" {
		publicID = fmt.Sprintf("visits/%s/%d", s.actingUser(r), s.now().UnixMilli())
	}
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))

	res := s.uploader.UploadOrKeepPath(r.Context(), publicID, header.Filename, file)
	apiJSON(w, res, http.StatusCreated)
}
