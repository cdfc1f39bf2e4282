package service

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ArchiverInterface stores generated quotations outside the process
type ArchiverInterface interface {
	Archive(ctx context.Context, name string, data []byte) (string, error)
}

// DriveService archives quotation PDFs to a Google Drive folder
type DriveService struct {
	client   *drive.Service
	folderID string
}

// NewDriveService creates a new DriveService.
// credentialsPath should be the path to the Service Account JSON file.
func NewDriveService(ctx context.Context, credentialsPath, folderID string) (*DriveService, error) {
	driveService, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client:   driveService,
		folderID: folderID,
	}, nil
}

var _ ArchiverInterface = (*DriveService)(nil)

// Archive uploads a PDF into the archive folder and returns the Drive file id
func (ds *DriveService) Archive(ctx context.Context, name string, data []byte) (string, error) {
	file := &drive.File{
		Name:     name,
		MimeType: "application/pdf",
		Parents:  []string{ds.folderID},
	}

	created, err := ds.client.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return created.Id, nil
}
