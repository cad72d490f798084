// Package s3 stores profile pictures in Amazon S3 or an S3-compatible
// service (MinIO, Cloudflare R2, DigitalOcean Spaces).
//
// ImageStore.Upload writes the bytes under the configured key prefix and
// returns the public URL: BaseURL when a CDN fronts the bucket, otherwise
// a URL derived from the endpoint or the AWS region.
//
//	store, err := s3.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	url, err := store.Upload(ctx, "", pngBytes, "image/png")
//
// Errors from the SDK are classified into the package sentinels
// (ErrAccessDenied, ErrServiceUnavailable, ErrOperationTimeout, ...).
package s3
