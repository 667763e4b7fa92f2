package http

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/sitecrew-go/internal/handler/http/response"
	"github.com/cmlabs-hris/sitecrew-go/internal/service/file"
)

// multipart overhead allowed on top of the photo itself
const uploadOverhead = 1 << 20

type UploadHandler interface {
	// UploadPhoto handles POST /api/upload/photo with multipart field "photo"
	UploadPhoto(w http.ResponseWriter, r *http.Request)
}

type uploadHandlerImpl struct {
	fileService file.FileService
}

func NewUploadHandler(fileService file.FileService) UploadHandler {
	return &uploadHandlerImpl{fileService: fileService}
}

func (h *uploadHandlerImpl) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, file.MaxPhotoSize+uploadOverhead)

	if err := r.ParseMultipartForm(file.MaxPhotoSize + uploadOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, file.ErrFileTooLarge)
			return
		}
		response.BadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	photo, header, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "photo file is required", map[string]string{"photo": "photo file is required"})
		return
	}
	defer photo.Close()

	if header.Size > file.MaxPhotoSize {
		response.HandleError(w, file.ErrFileTooLarge)
		return
	}

	result, err := h.fileService.UploadPhoto(r.Context(), photo, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Photo uploaded successfully", result)
}
