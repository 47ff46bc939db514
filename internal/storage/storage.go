// Package storage keeps uploaded product files and their error reports.
package storage

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the blob store used for raw uploads and reports.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// UploadKey is where the raw file of an upload lives.
func UploadKey(orgID, uploadID, fileName string) string {
	return "uploads/" + orgID + "/" + uploadID + "/" + fileName
}

// ReportKey is where the error report of an upload lives.
func ReportKey(orgID, uploadID string) string {
	return "reports/" + orgID + "/" + uploadID + "/errori.csv"
}
