package util

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

func GetEndorsementDirectoryPath(requestId string) string {
	return fmt.Sprintf("endorsements/%s", requestId)
}

func ToEndorsementDirectoryPath(requestId string, filename string) string {
	return filepath.Join(GetEndorsementDirectoryPath(requestId), filepath.Base(filename))
}

func createBucketIfNotExists(s3 *minio.Client, bucketName string) error {
	exists, err := s3.BucketExists(context.Background(), bucketName)
	if err != nil {
		return err
	}

	if !exists {
		err = s3.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return err
		}
	}

	return nil
}

type FileUploadOptions struct {
	// Add a prefix to the file name
	// For example, if the file name is "doc.pdf" and the prefix is "endorsements/123",
	// the resulting name will be "endorsements/123/doc.pdf"
	DirectoryPath string
	UniquePrefix  bool
	Bucket        string
	S3            *minio.Client
}

func UploadFileToS3ByFileHeader(fileHeader *multipart.FileHeader, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	if err := createBucketIfNotExists(fuo.S3, fuo.Bucket); err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileName := prepareFileName(fileHeader.Filename, fuo)

	info, err := fuo.S3.PutObject(
		context.Background(),
		fuo.Bucket,
		fileName,
		file,
		fileHeader.Size,
		minio.PutObjectOptions{
			ContentType: fileHeader.Header.Get("Content-Type"),
		},
	)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return info, nil
}

// UploadBytesToS3 stores an in-memory payload, used for signed documents
// produced by the endorsement pipeline.
func UploadBytesToS3(data []byte, fileName string, contentType string, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	if err := createBucketIfNotExists(fuo.S3, fuo.Bucket); err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	objectName := prepareFileName(fileName, fuo)

	info, err := fuo.S3.PutObject(
		context.Background(),
		fuo.Bucket,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return info, nil
}

// Generates the final file name with uniqueness and prefix
func prepareFileName(originalName string, fuo *FileUploadOptions) string {
	fileName := originalName

	if fuo != nil {
		if fuo.UniquePrefix {
			fileName = AddUniquePrefixToFileName(originalName)
		}

		if fuo.DirectoryPath != "" {
			fileName = filepath.Join(fuo.DirectoryPath, fileName)
		}
	}

	return fileName
}
