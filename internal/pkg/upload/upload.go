package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// Document slots accepted on a driver submission form.
var DocumentFields = []string{
	"photo",
	"aadhaarDoc",
	"rcDoc",
	"licenseDoc",
	"insuranceDoc",
	"pollutionDoc",
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// EnsureDir creates the upload directory if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// Save stores one multipart file under dir with a collision-free name and
// returns the stored file name. Submissions persist the name only; serving
// the bytes back is the static-file collaborator's job.
func Save(c *fiber.Ctx, file *multipart.FileHeader, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
		return "", err
	}
	return name, nil
}

// SaveField saves the uploaded file for a named form field, if present.
// Returns the stored name, or "" when the field carries no file.
func SaveField(c *fiber.Ctx, field, dir string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		// fiber returns an error when the field is absent; treat as no upload
		return "", nil
	}
	return Save(c, file, dir)
}

// Remove deletes a stored file by name, ignoring files already gone.
func Remove(dir, name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
