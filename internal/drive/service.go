package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/andresuchdata/retailbi/internal/domain"
)

const (
	folderMimeType      = "application/vnd.google-apps.folder"
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	xlsxMimeType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	client := config.Client(ctx)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	var files []*File

	// If no folder ID is provided, use "root"
	if folderID == "" {
		folderID = "root"
	}

	result, err := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))).
		Fields("files(id, name, mimeType, modifiedTime, size)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	for _, f := range result.Files {
		if f.MimeType == folderMimeType {
			continue
		}
		files = append(files, &File{
			ID:           f.Id,
			Name:         f.Name,
			MimeType:     f.MimeType,
			ModifiedTime: f.ModifiedTime,
			Size:         f.Size,
		})
	}

	return files, nil
}

// DownloadFile streams a file's content to w. Native Google Sheets are
// exported as xlsx.
func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) (*File, error) {
	meta, err := s.srv.Files.Get(fileID).Fields("id, name, mimeType, modifiedTime, size").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read file metadata: %w", err)
	}
	file := &File{
		ID:           meta.Id,
		Name:         meta.Name,
		MimeType:     meta.MimeType,
		ModifiedTime: meta.ModifiedTime,
		Size:         meta.Size,
	}

	var body io.ReadCloser
	if meta.MimeType == spreadsheetMimeType {
		resp, err := s.srv.Files.Export(fileID, xlsxMimeType).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("unable to export spreadsheet: %w", err)
		}
		body = resp.Body
		if !strings.HasSuffix(strings.ToLower(file.Name), ".xlsx") {
			file.Name += ".xlsx"
		}
	} else {
		resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return nil, fmt.Errorf("unable to download file: %w", err)
		}
		body = resp.Body
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return nil, fmt.Errorf("unable to read file %s: %w", fileID, err)
	}
	return file, nil
}

// Fetch downloads a file into memory, returning its bytes and name. A key
// containing "/" is a folder path ending in the file name, anything else a
// file ID.
func (s *Service) Fetch(ctx context.Context, key string) ([]byte, string, error) {
	fileID := key
	if strings.Contains(key, "/") {
		id, err := s.resolvePath(ctx, key)
		if err != nil {
			return nil, "", err
		}
		fileID = id
	}

	var buf bytes.Buffer
	file, err := s.DownloadFile(ctx, fileID, &buf)
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), file.Name, nil
}

func (s *Service) FindFolderByPath(ctx context.Context, folderPath string) (string, error) {
	if folderPath == "" {
		return "root", nil
	}

	folders := strings.Split(folderPath, "/")
	currentID := "root"

	for _, folder := range folders {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				escapeQuery(currentID), escapeQuery(folder), folderMimeType)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}

func (s *Service) resolvePath(ctx context.Context, filePath string) (string, error) {
	dir, name := path.Split(strings.Trim(filePath, "/"))
	folderID, err := s.FindFolderByPath(ctx, dir)
	if err != nil {
		return "", err
	}
	files, err := s.ListFiles(ctx, folderID)
	if err != nil {
		return "", err
	}
	f := findFile(files, name)
	if f == nil {
		return "", fmt.Errorf("%w: drive file %s", domain.ErrNotFound, filePath)
	}
	return f.ID, nil
}

// findFile prefers an exact name match, then a case-insensitive one.
func findFile(files []*File, name string) *File {
	for _, f := range files {
		if f.Name == name {
			return f
		}
	}
	for _, f := range files {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}
